package main

import (
	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/jobs"
	"github.com/vbonduro/loandesk/internal/web"
	"github.com/vbonduro/loandesk/internal/web/templates"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and run the overdue scan",
		Long: `Serves the HTML UI on --addr and scans for overdue payments every
--scan-interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := jobs.NewOverdueScanner(a.service, a.logger)
			scheduler, err := jobs.NewScheduler(scanner, a.cfg.OverdueScanInterval, a.logger)
			if err != nil {
				return err
			}
			scheduler.Start()
			defer func() {
				if err := scheduler.Stop(); err != nil {
					a.logger.Error("failed to stop scheduler", "error", err)
				}
			}()

			server := web.NewServer(a.service, templates.FS, a.logger)
			return server.ListenAndServe(cmd.Context(), a.cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&a.cfg.ListenAddr, "addr", a.cfg.ListenAddr, "listen address (env LISTEN_ADDR)")
	cmd.Flags().DurationVar(&a.cfg.OverdueScanInterval, "scan-interval", a.cfg.OverdueScanInterval, "overdue scan interval (env OVERDUE_SCAN_INTERVAL)")
	return cmd
}
