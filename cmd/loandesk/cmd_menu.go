package main

import (
	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/menu"
)

func (a *app) newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd)
		},
	}
}

func (a *app) runMenu(cmd *cobra.Command) error {
	return menu.New(a.service, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
}
