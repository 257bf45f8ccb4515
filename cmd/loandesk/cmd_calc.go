package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/menu"
	"github.com/vbonduro/loandesk/internal/service"
)

func (a *app) newCalcCmd() *cobra.Command {
	var (
		principal, rate, start string
		term                   int
		table                  bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Price a loan without recording it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseDecimalFlag(principal, "principal")
			if err != nil {
				return err
			}
			r, err := parseDecimalFlag(rate, "rate")
			if err != nil {
				return err
			}
			from := a.service.Today()
			if start != "" {
				from, err = time.Parse(domain.DateLayout, start)
				if err != nil {
					return fmt.Errorf("%w: --start must be a date in YYYY-MM-DD form", domain.ErrInvalidInput)
				}
			}

			quote, err := a.service.Quote(service.QuoteRequest{
				Principal:   p,
				RatePercent: r,
				TermMonths:  term,
			}, from)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monthly payment: %s\n", quote.Payment.StringFixed(2))
			fmt.Fprintf(out, "Total paid:      %s\n", quote.Total.StringFixed(2))
			fmt.Fprintf(out, "Overpayment:     %s\n", quote.Overpayment.StringFixed(2))
			if table {
				fmt.Fprintln(out, menu.AmortizationTable(quote.Installments, quote.Periods))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "loan amount")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().IntVar(&term, "term", 0, "term in months")
	cmd.Flags().StringVar(&start, "start", "", "first day of the loan, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&table, "table", false, "print the amortization table")
	for _, f := range []string{"principal", "rate", "term"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
