package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docrank/internal/httpapi"
	"github.com/dshills/docrank/internal/mcp"
)

const shutdownTimeout = 10 * time.Second

func mcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the rank_documents, get_report and list_reports tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			runner, err := a.runner()
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(runner, a.store, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = server.Serve(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Info("mcp_server_stopped")
			return nil
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Routes:
  GET    /health
  POST   /api/rank            multipart: files, persona, job, top_k
  GET    /api/reports?limit=
  GET    /api/reports/{id}
  DELETE /api/reports/{id}

Set DOCRANK_API_KEY (or http.api_key) to require a bearer token on /api routes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}

			runner, err := a.runner()
			if err != nil {
				return err
			}

			srv := httpapi.NewServer(runner, a.store, a.logger, httpapi.Config{
				APIKey:         a.cfg.HTTP.APIKey,
				MaxUploadBytes: a.cfg.HTTP.MaxUploadBytes,
			})

			httpServer := &http.Server{
				Addr:         a.cfg.HTTP.Addr,
				Handler:      srv,
				ReadTimeout:  60 * time.Second,
				WriteTimeout: 10 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http_server_started", slog.String("addr", a.cfg.HTTP.Addr))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("http_server_stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :8090)")

	return cmd
}
