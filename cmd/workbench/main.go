package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/calibrate-workbench/internal/adapter/core"
	"github.com/couchcryptid/calibrate-workbench/internal/adapter/httpapi"
	sqliteadapter "github.com/couchcryptid/calibrate-workbench/internal/adapter/sqlite"
	"github.com/couchcryptid/calibrate-workbench/internal/backend"
	"github.com/couchcryptid/calibrate-workbench/internal/config"
	"github.com/couchcryptid/calibrate-workbench/internal/domain"
	"github.com/couchcryptid/calibrate-workbench/internal/observability"
	"github.com/couchcryptid/calibrate-workbench/internal/store"
	"github.com/couchcryptid/calibrate-workbench/internal/workfile"
)

const coreWatchInterval = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Calibration workbench service",
	Long:  "Headless calibration workbench: wizard state, workflow files, and the computation core behind an HTTP API.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workbench HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <workflow.json>",
	Short: "Validate a saved workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := workfile.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("workflow ok: variant=%s page=%d computations=%d\n",
			state.Variant, state.Page.Active, len(state.Computations))
		if blockers := domain.AdvanceBlockers(state); blockers != nil {
			fmt.Println("active page incomplete:")
			for _, b := range blockers {
				fmt.Println("  -", b)
			}
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, checkCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	db, err := sql.Open("sqlite", "file:"+cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	defer db.Close()

	sessions, err := sqliteadapter.NewSessionStore(db)
	if err != nil {
		return err
	}

	initial, err := initialState(cfg, sessions, logger)
	if err != nil {
		return err
	}
	st := store.New(initial, logger, metrics)

	client := core.NewClient(cfg.CoreURL, cfg.CoreRequestTimeout, logger, metrics)
	cached := core.NewCachedMetadata(client, cfg.MetadataCacheSize, logger, metrics)
	supervisor := backend.NewSupervisor(cfg.CoreCmd, cfg.CoreStartTimeout, client, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, st, cached, client, supervisor, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := supervisor.Start(ctx); err != nil {
		logger.Error("calibration core startup failed", "error", err)
		return err
	}
	go supervisor.Watch(ctx, coreWatchInterval)

	autosaver := sqliteadapter.NewAutosaver(
		sessions, st, cfg.AutosaveInterval, cfg.SessionRetain,
		clockwork.NewRealClock(), logger, metrics,
	)
	go autosaver.Run(ctx)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Final snapshot so a restart resumes exactly where the session ended.
	if err := sessions.Save(shutdownCtx, st.Snapshot()); err != nil {
		logger.Error("final session save failed", "error", err)
	}

	supervisor.Stop()
	logger.Info("shutdown complete")
	return nil
}

// initialState restores the latest autosaved session, falling back to a
// fresh workflow with the configured default variant preselected.
func initialState(cfg *config.Config, sessions *sqliteadapter.SessionStore, logger *slog.Logger) (domain.State, error) {
	restored, ok, err := sessions.Latest(context.Background())
	if err != nil {
		return domain.State{}, err
	}
	if ok {
		// The session database is user-reachable on disk; a snapshot
		// must clear the same structural checks as a loaded workflow
		// file before it may seed the store.
		if err := workfile.Validate(restored); err != nil {
			logger.Warn("discarding invalid saved session", "error", err)
		} else {
			logger.Info("restored previous session", "page", restored.Page.Active)
			return restored, nil
		}
	}

	state := domain.NewState()
	if cfg.DefaultVariant != "" {
		state = domain.Reduce(state, domain.SetWorkflowVariant{Variant: domain.Variant(cfg.DefaultVariant)})
	}
	return state, nil
}
