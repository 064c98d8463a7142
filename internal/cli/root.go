// Package cli implements bookprepperctl, the maintenance CLI that runs
// against the same database and services as the server.
package cli

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/di"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile      string
	databasePath string
	logLevel     string
}

// app holds the container while a subcommand runs.
type app struct {
	flags    globalFlags
	injector *do.RootScope
}

// RootCommand creates the bookprepperctl command tree.
func RootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "bookprepperctl",
		Short:         "BookPrepper maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Path to .env file")
	pf.StringVar(&a.flags.databasePath, "database-path", "", "Path to the SQLite database file")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		rescoreCommand(a),
		suggestionsCommand(a),
		seedCommand(a),
	)

	return rootCmd
}

// run opens the services, calls fn and always closes them again.
func (a *app) run(fn func(injector do.Injector) error) (err error) {
	if err := a.open(); err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return fn(a.injector)
}

// open loads configuration and initializes the core services. Search is
// always off: the index lives in server memory.
func (a *app) open() error {
	args := []string{"-env-file", a.flags.envFile, "-log-level", a.flags.logLevel, "-search-enabled", "false"}
	if a.flags.databasePath != "" {
		args = append(args, "-database-path", a.flags.databasePath)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	a.injector = di.NewContainer(cfg)
	if err := di.Core(a.injector); err != nil {
		_ = di.Shutdown(a.injector)
		a.injector = nil
		return fmt.Errorf("initialize services: %w", err)
	}
	return nil
}

func (a *app) close() error {
	if a.injector == nil {
		return nil
	}
	injector := a.injector
	a.injector = nil
	return di.Shutdown(injector)
}
