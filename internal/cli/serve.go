package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/fermi-notifier/internal/adapters/http"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
	"github.com/PabloGalante/fermi-notifier/internal/scheduler"
)

const shutdownTimeout = 50 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger service (POST / and GET /healthz)",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runServe(c.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := observability.Logger()

	svc, err := newService(ctx, cfg)
	if err != nil {
		log.Error("failed to build service", "error", err)
		return err
	}

	var sched *scheduler.Scheduler
	if cfg.Schedule != "" {
		sched = scheduler.New()
		err := sched.Schedule(cfg.Schedule, func(ctx context.Context) error {
			_, err := svc.Run(ctx)
			return err
		})
		if err != nil {
			log.Error("failed to schedule fermi run", "error", err)
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           httpadapter.NewServer(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Fermi notifier listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if sched != nil {
			<-sched.Stop().Done()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Error("server stopped with error", "error", err)
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		<-sched.Stop().Done()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return err
	}

	log.Info("server stopped")
	return nil
}
