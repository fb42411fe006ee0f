package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodcart/core/internal/adapters/repository"
	"github.com/foodcart/core/internal/application/services"
	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/database"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/infrastructure/metrics"
	"github.com/foodcart/core/internal/infrastructure/server"
	"github.com/foodcart/core/internal/ports"
)

// Version is stamped at build time with -ldflags.
var Version = "1.0.0"

// Options holds flags shared by every command
type Options struct {
	ConfigFile string
}

// NewServeCommand creates the serve command
func NewServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the FoodCart API server",
		Long:  "Initialize storage and start the FoodCart API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(opts)
		},
	}
}

// NewInitCommand creates the init command
func NewInitCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and empty store documents",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, appLogger := bootstrap(opts)
			defer appLogger.Sync()

			backend, err := repository.Open(cfg, nil, appLogger)
			if err != nil {
				appLogger.Fatalw("Failed to initialize storage", "error", err)
			}
			defer backend.Close()

			fmt.Printf("Storage ready (driver: %s)\n", backend.Driver)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(opts *Options) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage PostgreSQL schema migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(opts, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(opts, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion(opts)
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand(opts *Options) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create and list users in the configured store",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			if username == "" || password == "" {
				log.Fatal("Username and password are required")
			}

			createUser(opts, username, password)
		},
	}
	createUserCmd.Flags().String("username", "", "Username (required)")
	createUserCmd.Flags().String("password", "", "Password (required)")

	listUsersCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered usernames",
		Run: func(cmd *cobra.Command, args []string) {
			listUsers(opts)
		},
	}

	userCmd.AddCommand(createUserCmd, listUsersCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print FoodCart version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FoodCart Core v%s\n", Version)
		},
	}
}

func bootstrap(opts *Options) (*config.Config, *logger.Logger) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return cfg, appLogger
}

func runServer(opts *Options) {
	cfg, appLogger := bootstrap(opts)
	defer appLogger.Sync()

	var (
		m        *metrics.Metrics
		observer ports.StoreObserver
	)
	if cfg.Metrics.Enabled {
		m = metrics.New()
		observer = m
	}

	backend, err := repository.Open(cfg, observer, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize storage", "error", err)
	}
	defer backend.Close()

	srv, err := server.New(cfg, backend, appLogger, m)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting FoodCart API server",
		"address", cfg.Server.Address(),
		"environment", cfg.App.Environment,
		"storage", backend.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}

func openDatabase(opts *Options) *database.DB {
	cfg, appLogger := bootstrap(opts)
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		log.Fatalf("Migrations require storage.driver=%s (current: %s)", config.StorageDriverPostgres, cfg.Storage.Driver)
	}

	db, err := database.New(context.Background(), cfg.Database, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func runMigration(opts *Options, direction string) {
	db := openDatabase(opts)
	defer db.Close()

	status, err := db.Migrate(direction)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if !status.Changed {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully (version %d)\n", direction, status.Version)
	}
}

func showMigrationVersion(opts *Options) {
	db := openDatabase(opts)
	defer db.Close()

	status, err := db.MigrationVersion()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", status.Version)
	fmt.Printf("Dirty: %t\n", status.Dirty)
}

func createUser(opts *Options, username, password string) {
	cfg, appLogger := bootstrap(opts)
	defer appLogger.Sync()

	backend, err := repository.Open(cfg, nil, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer backend.Close()

	authService := services.NewAuthService(backend.Users, backend.Carts, cfg.JWT, cfg.Security.BcryptCost, appLogger)
	err = authService.Register(context.Background(), ports.RegisterRequest{
		Username: username,
		Password: password,
	})
	if errors.Is(err, entities.ErrUsernameTaken) {
		log.Fatalf("User %q already exists", username)
	}
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  Username: %s\n", username)
}

func listUsers(opts *Options) {
	cfg, appLogger := bootstrap(opts)
	defer appLogger.Sync()

	backend, err := repository.Open(cfg, nil, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer backend.Close()

	names, err := services.NewUserService(backend.Users, appLogger).ListUsernames(context.Background())
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}

	for _, name := range names {
		fmt.Println(name)
	}
}
