package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
	gatewayhttp "github.com/sagarc03/swiftgate/http"
	"github.com/sagarc03/swiftgate/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the swiftgate HTTP server.

The gateway authenticates against the upstream storage service, then serves
uploads, downloads and the upload registry. On SIGINT or SIGTERM it stops
accepting requests and gives in-flight transfers server.shutdown_timeout
seconds to finish.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	serveCmd.Flags().Bool("migrate", false, "create the registry schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	migrate, _ := cmd.Flags().GetBool("migrate")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := openGateway(ctx, cfg, migrate)
	if err != nil {
		return err
	}

	handlerConfig, err := newHandlerConfig(cfg)
	if err != nil {
		_ = gw.Close(context.Background())
		return err
	}
	handler := gatewayhttp.NewHandler(handlerConfig, gw.service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "upstream", cfg.Upstream.URL,
			"read", cfg.Auth.Read, "write", cfg.Auth.Write)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = gw.Close(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
	}
	if err := gw.Close(shutdownCtx); err != nil {
		slog.Warn("transfers cut at shutdown", "err", err)
	}

	slog.Info("server stopped")
	return nil
}

func newHandlerConfig(cfg *config.Config) (*gatewayhttp.HandlerConfig, error) {
	hc := &gatewayhttp.HandlerConfig{
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}

	if cfg.Auth.Read == "public" && cfg.Auth.Write == "public" {
		return hc, nil
	}

	store, err := keybackend.NewSecretStore(cfg.Auth.Keys)
	if err != nil {
		return nil, fmt.Errorf("load access keys: %w", err)
	}
	if store.Len() == 0 {
		return nil, errors.New("private access requires at least one key in auth.keys")
	}
	slog.Info("loaded access keys", "count", store.Len())

	verifier := swiftgate.NewSignatureVerifier(store)
	if cfg.Auth.Read == "private" {
		hc.ReadVerifier = verifier
	}
	if cfg.Auth.Write == "private" {
		hc.WriteVerifier = verifier
	}
	return hc, nil
}
