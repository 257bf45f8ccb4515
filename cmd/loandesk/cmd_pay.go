package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <payment-id>",
		Short: "Settle a scheduled payment today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paymentID, err := parseIDArg(args[0], "payment id")
			if err != nil {
				return err
			}
			settlement, err := a.service.PayPayment(cmd.Context(), paymentID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Payment %d paid.\n", paymentID)
			if settlement.Repaid {
				fmt.Fprintf(out, "Loan %d is fully repaid.\n", settlement.Loan.ID)
			}
			return nil
		},
	}
}
