package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hsnesn/staffrota/cmd/cli/commands"
	"github.com/hsnesn/staffrota/internal/config"
	"github.com/hsnesn/staffrota/pkg/clients/directory"
	"github.com/hsnesn/staffrota/pkg/clients/mailclient"
	"github.com/hsnesn/staffrota/pkg/core/services"
	"github.com/hsnesn/staffrota/pkg/db"
	"github.com/hsnesn/staffrota/pkg/notify"
	"github.com/hsnesn/staffrota/pkg/postgres"
	"github.com/hsnesn/staffrota/pkg/sqlite"
	"github.com/hsnesn/staffrota/pkg/utils/logging"
)

var (
	env        string
	asUser     string
	asRole     string
	department string
	program    string

	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "staffrota",
		Short: "Staffrota CLI - Manage staffing requirements, availability and rosters",
		Long:  `A CLI tool for resolving staffing requirements, collecting availability, drafting and approving rosters, and reporting coverage.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment name, used for log file naming")
	rootCmd.PersistentFlags().StringVar(&asUser, "as-user", "", "Act as this user id (required)")
	rootCmd.PersistentFlags().StringVar(&asRole, "as-role", services.RoleManager, "Act with this role (admin, operations, manager, staff)")
	rootCmd.PersistentFlags().StringVarP(&department, "department", "d", "", "Department id for scoped commands")
	rootCmd.PersistentFlags().StringVarP(&program, "program", "p", "", "Program id, empty means department-wide")
	rootCmd.MarkPersistentFlagRequired("as-user")

	rootCmd.AddCommand(commands.ResolveRequirementsCmd(appRef()))
	rootCmd.AddCommand(commands.MaterializeRecurringCmd(appRef()))
	rootCmd.AddCommand(commands.SubmitAvailabilityCmd(appRef()))
	rootCmd.AddCommand(commands.CopyPreviousMonthCmd(appRef()))
	rootCmd.AddCommand(commands.ClearMonthCmd(appRef()))
	rootCmd.AddCommand(commands.SaveAssignmentsCmd(appRef()))
	rootCmd.AddCommand(commands.ApproveAssignmentsCmd(appRef()))
	rootCmd.AddCommand(commands.CoverageCmd(appRef()))
	rootCmd.AddCommand(commands.CoverageOverviewCmd(appRef()))
	rootCmd.AddCommand(commands.RankCandidatesCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext, allocating it before initApp has
// populated it so command constructors can hold a stable pointer.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, store, and notification dispatcher
func initApp() error {
	var err error
	a := appRef()
	a.Ctx = context.Background()

	// Initialize logger
	a.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	a.Logger.Info("Loading configuration")
	a.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully")

	// Resolve the acting identity from flags
	a.Caller = services.Caller{UserID: asUser, Role: asRole}
	a.Department = department
	a.Program = program

	// Connect the store
	a.Logger.Info("Connecting to database", zap.String("driver", a.Cfg.Database.Driver))
	a.Database, err = openStore(a.Ctx, a.Cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.Logger.Debug("Database ready")

	// Build the notification dispatcher
	notifier, err := buildNotifier(a.Ctx, a.Cfg, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to build notifier: %w", err)
	}
	a.Dispatcher = notify.NewDispatcher(notifier, a.Logger)
	a.Logger.Debug("Notifier initialized", zap.String("mode", a.Cfg.Notifier.Mode))

	return nil
}

// openStore opens the configured backend. Postgres runs its migrations on
// startup; sqlite creates its schema in New.
func openStore(ctx context.Context, cfg *config.Config) (db.Database, error) {
	switch cfg.Database.Driver {
	case "postgres":
		store, err := postgres.NewDB(ctx, cfg.Database.ConnString)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	case "sqlite":
		return sqlite.New(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// buildNotifier assembles the configured notification transport.
func buildNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.Notifier.Mode != "gmail" {
		return &notify.LogNotifier{Logger: logger}, nil
	}

	var cache directory.KV
	if cfg.Directory.RedisAddr != "" {
		cache = directory.NewRedisKV(redis.NewClient(&redis.Options{Addr: cfg.Directory.RedisAddr}))
	}
	ttl := time.Duration(cfg.Directory.CacheTTLMinutes) * time.Minute
	dir := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.APIToken, cache, ttl, logger)

	mail, err := mailclient.NewClient(ctx, mailclient.Credentials{
		ClientID:     cfg.Notifier.GmailClientID,
		ClientSecret: cfg.Notifier.GmailClientSecret,
		RefreshToken: cfg.Notifier.GmailRefreshToken,
	}, cfg.Notifier.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	return mailclient.NewNotifier(mail, dir), nil
}
