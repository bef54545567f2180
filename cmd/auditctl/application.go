// Command auditctl administers the audit tables without running the API:
// it prepares table headers, creates auditors, lists audited companies and
// frames, and exports reports to disk.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

const (
	configFlag   = "config"
	backendFlag  = "backend"
	logLevelFlag = "log-level"
	backendKey   = "TABLE_BACKEND"
	xlsxPathFlag = "xlsx"
	xlsxPathKey  = "XLSX_PATH"
	defaultLevel = "warn"
	cliEnv       = "cli"
)

// application wires the cobra tree to a viper-backed configuration
type application struct {
	root       *cobra.Command
	viper      *viper.Viper
	configPath string
	logLevel   string

	// openStore is replaced in tests
	openStore func(ctx context.Context, cfg *config.Config) (sheets.Store, func() error, error)
}

// workspace is what a subcommand needs to touch the tables
type workspace struct {
	cfg   *config.Config
	store sheets.Store
	repos *repository.Repositories
	close func() error
}

func newApplication() *application {
	app := &application{
		viper:     viper.New(),
		openStore: sheets.Open,
	}

	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Administer AuditNote tables and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initialize(cmd)
		},
	}
	root.SetContext(context.Background())

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, configFlag, "", "Optional configuration file (YAML, JSON or .env)")
	flags.StringVar(&app.logLevel, logLevelFlag, defaultLevel, "Log level (debug, info, warn, error)")
	flags.String(backendFlag, "", "Table backend: google, xlsx, postgres or memory")
	flags.String(xlsxPathFlag, "", "Workbook path for the xlsx backend")
	_ = app.viper.BindPFlag(backendKey, flags.Lookup(backendFlag))
	_ = app.viper.BindPFlag(xlsxPathKey, flags.Lookup(xlsxPathFlag))

	root.AddCommand(
		app.tablesCommand(),
		app.auditorCommand(),
		app.reviewCommand(),
		app.reportCommand(),
	)
	app.root = root
	return app
}

// Execute runs the command tree
func (a *application) Execute() error {
	return a.root.Execute()
}

func (a *application) initialize(cmd *cobra.Command) error {
	logger.SetupWriter(cliEnv, cmd.ErrOrStderr(), a.logLevel)

	a.viper.AutomaticEnv()
	if a.configPath == "" {
		return nil
	}
	a.viper.SetConfigFile(a.configPath)
	if strings.HasSuffix(a.configPath, ".env") {
		a.viper.SetConfigType("env")
	}
	if err := a.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	return nil
}

// lookup exposes viper as a config.Lookup: flags, then environment, then
// the config file. Unset keys fall back to config defaults.
func (a *application) lookup(key string) (string, bool) {
	if !a.viper.IsSet(key) {
		return "", false
	}
	return a.viper.GetString(key), true
}

// open loads configuration and the table store with every header in place
func (a *application) open(ctx context.Context) (*workspace, error) {
	cfg, err := config.LoadFrom(a.lookup)
	if err != nil {
		return nil, err
	}
	store, closeFn, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := sheets.EnsureSchemas(ctx, store); err != nil {
		closeFn()
		return nil, err
	}
	return &workspace{
		cfg:   cfg,
		store: store,
		repos: repository.NewRepositories(store),
		close: closeFn,
	}, nil
}

func (w *workspace) Close() {
	if err := w.close(); err != nil {
		logger.Error("Failed to close table store", "error", err)
	}
}
