package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/vbonduro/loandesk/internal/config"
	"github.com/vbonduro/loandesk/internal/db"
	"github.com/vbonduro/loandesk/internal/logging"
	"github.com/vbonduro/loandesk/internal/service"
	"github.com/vbonduro/loandesk/internal/statement/local"
	"github.com/vbonduro/loandesk/internal/store"
)

// app holds what every subcommand needs. It is populated by the root
// command's PersistentPreRunE and torn down when execute returns.
type app struct {
	cfg     *config.Config
	clock   clockwork.Clock
	logger  *slog.Logger
	db      *sql.DB
	service *service.LoanService
	cleanup func()
}

func newApp(clock clockwork.Clock) *app {
	return &app{cfg: config.Load(), clock: clock}
}

// execute runs the command line in args. Resources opened for the command are
// released even when it fails.
func (a *app) execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loandesk",
		Short: "Client and loan ledger for a small lending desk",
		Long: `loandesk keeps a register of clients and the annuity loans issued to
them, with a payment schedule per loan.

Run without a subcommand to start the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.DBPath, "db", a.cfg.DBPath, "SQLite database file (env DB_PATH)")
	flags.StringVar(&a.cfg.StatementPath, "statements", a.cfg.StatementPath, "directory for exported statements (env STATEMENT_PATH)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "debug, info, warn or error (env LOG_LEVEL)")
	flags.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "also append logs to this file (env LOG_FILE)")
	flags.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "json or text (env LOG_FORMAT)")

	root.AddCommand(
		a.newMenuCmd(),
		a.newServeCmd(),
		a.newClientCmd(),
		a.newLoanCmd(),
		a.newPayCmd(),
		a.newCalcCmd(),
	)
	return root
}

func (a *app) open() error {
	logger, cleanup, err := logging.New(a.cfg.LogLevel, a.cfg.LogFormat, a.cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.cleanup = cleanup

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = database

	statements, err := local.NewDirStore(a.cfg.StatementPath)
	if err != nil {
		return err
	}

	a.service = service.NewLoanService(
		store.NewClientStore(database),
		store.NewLoanStore(database),
		store.NewPaymentStore(database),
		statements,
		a.clock,
		logger,
	)
	return nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
		a.db = nil
	}
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
	return err
}
