package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/domain"
	"github.com/vbonduro/loandesk/internal/menu"
	"github.com/vbonduro/loandesk/internal/service"
)

func parseIDArg(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", domain.ErrInvalidInput, what)
	}
	return id, nil
}

func parseDecimalFlag(s, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s must be a number", domain.ErrInvalidInput, name)
	}
	return d, nil
}

func (a *app) newLoanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Open, inspect and close loans",
	}
	cmd.AddCommand(
		a.newLoanOpenCmd(),
		a.newLoanListCmd(),
		a.newLoanScheduleCmd(),
		a.newLoanCancelCmd(),
		a.newLoanRescheduleCmd(),
		a.newLoanStatementCmd(),
	)
	return cmd
}

func (a *app) newLoanOpenCmd() *cobra.Command {
	var (
		clientID        int64
		principal, rate string
		term            int
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a loan for a client starting today",
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

			loan, payments, err := a.service.OpenLoan(cmd.Context(), service.NewLoan{
				ClientID:    clientID,
				Principal:   p,
				RatePercent: r,
				TermMonths:  term,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loan %d opened: %d payments of %s, reference %s.\n",
				loan.ID, len(payments), loan.MonthlyPayment.StringFixed(2), loan.Reference)
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "client ID")
	cmd.Flags().StringVar(&principal, "principal", "", "loan amount")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().IntVar(&term, "term", 0, "term in months")
	for _, f := range []string{"client", "principal", "rate", "term"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) newLoanListCmd() *cobra.Command {
	var clientID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loans, optionally for one client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				loans []*domain.Loan
				err   error
			)
			if cmd.Flags().Changed("client") {
				loans, err = a.service.ListClientLoans(cmd.Context(), clientID)
			} else {
				loans, err = a.service.ListLoans(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), menu.LoanTable(loans))
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "only loans of this client")
	return cmd
}

func (a *app) newLoanScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <loan-id>",
		Short: "Show a loan's payment schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseIDArg(args[0], "loan id")
			if err != nil {
				return err
			}
			loan, payments, err := a.service.Schedule(cmd.Context(), loanID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Payment schedule for loan %d (%s)\n", loan.ID, loan.Status)
			fmt.Fprintln(out, menu.ScheduleTable(payments, a.service.Today()))
			return nil
		},
	}
}

func (a *app) newLoanCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <loan-id>",
		Short: "Cancel an open loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseIDArg(args[0], "loan id")
			if err != nil {
				return err
			}
			if _, err := a.service.CancelLoan(cmd.Context(), loanID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loan %d cancelled.\n", loanID)
			return nil
		},
	}
}

func (a *app) newLoanRescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <loan-id>",
		Short: "Rebuild the schedule of an open loan with no payments made",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseIDArg(args[0], "loan id")
			if err != nil {
				return err
			}
			payments, err := a.service.RegenerateSchedule(cmd.Context(), loanID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schedule of loan %d rebuilt with %d payments.\n", loanID, len(payments))
			return nil
		},
	}
}

func (a *app) newLoanStatementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statement <loan-id>",
		Short: "Export a loan's schedule as a CSV statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseIDArg(args[0], "loan id")
			if err != nil {
				return err
			}
			key, err := a.service.ExportStatement(cmd.Context(), loanID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Statement saved as %s.\n", key)
			return nil
		},
	}
}
