package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lottery-system/backend/internal/adapters/repository"
	"github.com/lottery-system/backend/internal/application/services"
	"github.com/lottery-system/backend/internal/infrastructure/config"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
	"github.com/lottery-system/backend/internal/infrastructure/server"
	"github.com/lottery-system/backend/internal/infrastructure/storage"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the lotteryd command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lotteryd",
		Short:         "Lottery System backend",
		Long:          "lotteryd stores the lottery group options for the desktop UI and serves them over a local HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewOptionsCommand())
	rootCmd.AddCommand(NewTokenCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local API server",
		Long:  "Resolve the storage path, load stored options and serve them until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			return runServer(cmd.Context(), configFile)
		},
	}
}

// NewOptionsCommand creates the options command with subcommands
func NewOptionsCommand() *cobra.Command {
	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "Inspect stored options",
	}

	optionsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored options as JSON, or null",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			return showOptions(cmd, configFile)
		},
	})

	optionsCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the storage path",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			st, err := storage.ResolvePath(afero.NewOsFs(), cfg.Storage)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.Path)
			return nil
		},
	})

	return optionsCmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed session token for the UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			subject, _ := cmd.Flags().GetString("subject")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			tok, err := services.NewSessionService(cfg.Security, logger.NewNop()).Issue(subject)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tok)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		},
	}

	tokenCmd.Flags().String("subject", "desktop-shell", "Token subject")
	tokenCmd.Flags().Bool("json", false, "Print the token with its expiry as JSON")

	return tokenCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print lotteryd version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lotteryd %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer(ctx context.Context, configFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Sync()

	st, err := storage.ResolvePath(afero.NewOsFs(), cfg.Storage)
	if err != nil {
		appLogger.Errorw("Storage unavailable", "error", err)
		return err
	}

	repo := repository.NewFileOptionsRepository(st.Fs, st.Path, appLogger)
	optionsService := services.NewOptionsService(ctx, repo, appLogger)
	sessionService := services.NewSessionService(cfg.Security, appLogger)

	srv, err := server.New(cfg, st, optionsService, sessionService, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	appLogger.Infow("Starting lotteryd",
		"address", cfg.Server.GetAddr(),
		"storage_path", st.Path,
		"sessions_required", sessionService.Enabled(),
		"environment", cfg.App.Environment,
	)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Errorw("Server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Errorw("Shutdown error", "error", err)
		return err
	}

	return <-errCh
}

func showOptions(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := storage.ResolvePath(afero.NewOsFs(), cfg.Storage)
	if err != nil {
		return err
	}

	repo := repository.NewFileOptionsRepository(st.Fs, st.Path, logger.NewNop())
	options := repo.Load(cmd.Context())

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(options)
}
