package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/menu"
	"github.com/vbonduro/loandesk/internal/service"
)

func (a *app) newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Register and list clients",
	}

	var in service.NewClient
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.service.RegisterClient(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client registered with ID %d.\n", client.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "full name")
	add.Flags().StringVar(&in.Birthdate, "birthdate", "", "birthdate, YYYY-MM-DD")
	add.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&in.Email, "email", "", "email address")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.service.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), menu.ClientTable(clients))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
