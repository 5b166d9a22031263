package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipeintegrity/fatigue-core/internal/service"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the study submission HTTP service",
	Long: `Serve the study API over HTTP.

Studies are submitted as YAML configuration payloads and executed
asynchronously; records and aggregated results are returned as JSON.

  POST /v1/studies             submit a configuration and start it
  GET  /v1/studies             list study records
  GET  /v1/studies/{id}        fetch one study record
  POST /v1/studies/{id}:stop   request cooperative cancellation
  GET  /v1/studies/{id}/result fetch the aggregated result
  GET  /healthz                liveness probe`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "http-addr", ":8080", "HTTP listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := service.NewStudyStore()
	executor := service.NewStudyExecutor(store)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           service.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	executor.Wait()
	return nil
}
