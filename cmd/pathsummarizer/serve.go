package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pathsummarizer/internal/httpapi"
	"pathsummarizer/internal/scheduler"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the summarize API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg, log, shutdownTracing, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize service",
			"error", err)

		return err
	}
	defer func() {
		if err = a.close(); err != nil {
			log.ErrorContext(ctx, "Failed to close stores",
				"error", err)
		}
	}()

	var prewarmer scheduler.Prewarmer
	if cfg.PrewarmSpec != "" {
		prewarmer = a.newPrewarmer()
	}

	sched := scheduler.New(ctx, scheduler.Config{
		PrewarmSpec: cfg.PrewarmSpec,
		ExpireSpec:  cfg.LifecycleSpec,
		Retention:   cfg.MarkerRetention,
	}, prewarmer, a.expirer, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"prewarmSpec", cfg.PrewarmSpec,
			"lifecycleSpec", cfg.LifecycleSpec)

		return err
	}
	log.InfoContext(ctx, "Scheduler is started",
		"prewarmSpec", cfg.PrewarmSpec,
		"lifecycleSpec", cfg.LifecycleSpec,
		"expiresMarkers", a.expirer != nil)

	handler := httpapi.NewHandler(a.service, cfg.SkipCacheMagicWord, log)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.InfoContext(ctx, "HTTP server is started",
		"listenAddr", cfg.ListenAddr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case runErr = <-serveErr:
		log.ErrorContext(ctx, "HTTP server failed",
			"error", runErr,
			"listenAddr", cfg.ListenAddr)
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(parent), shutdownTimeout)
	defer cancelShutdown()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	sched.Stop()
	log.InfoContext(shutdownCtx, "Scheduler is stopped")

	a.service.Wait()
	log.InfoContext(shutdownCtx, "Shadow calls are drained")

	if err = shutdownTracing(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down tracing",
			"error", err)
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return runErr
}
