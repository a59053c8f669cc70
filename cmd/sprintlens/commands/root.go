package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sprintlens/internal/analytics"
	"sprintlens/internal/api"
	"sprintlens/internal/config"
	"sprintlens/internal/jobs"
	"sprintlens/internal/logging"
	"sprintlens/internal/store/postgres"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "sprintlens",
	Short: "Sprintlens is a sprint and issue analytics server",
	Long: `An analytics server over issue-tracker data that serves burndown charts,
velocity trends, issue aging distributions, team capacity, and composite
sprint reports over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("sprintlens starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := postgres.Migrate(cfg.DBDSN); err != nil {
			return err
		}
		log.Info().Msg("Migrations applied")
		return nil
	},
}

func serve(ctx context.Context) error {
	pool, err := postgres.Open(ctx, cfg.DBDSN, cfg.DBConnectTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	svc := analytics.NewService(store)

	digest, err := jobs.NewDigest(log.Logger, svc, store, cfg.DigestCron, time.Local)
	if err != nil {
		return err
	}
	digest.Start()
	defer digest.Stop()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(cfg.AppEnv, log.Logger, svc),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(migrateCmd)
}
