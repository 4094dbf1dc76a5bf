package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sagarc03/swiftgate"
	"github.com/sagarc03/swiftgate/config"
	"github.com/sagarc03/swiftgate/database"
)

// gateway is the wired upstream client, session, registry and service.
type gateway struct {
	client  *swiftgate.Client
	service *swiftgate.GatewayService

	closeDB func()
}

// openGateway wires the gateway from cfg and authenticates upstream. The
// registry schema is migrated first when migrate is set.
func openGateway(ctx context.Context, cfg *config.Config, migrate bool) (*gateway, error) {
	registry, closeDB, err := database.Open(ctx, cfg.Database, migrate)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	client, err := swiftgate.NewClient(cfg.Upstream.Options())
	if err != nil {
		closeDB()
		return nil, err
	}

	sess, err := swiftgate.NewSession(cfg.Upstream.Account, cfg.Upstream.Container)
	if err != nil {
		_ = client.Close(ctx)
		closeDB()
		return nil, err
	}

	service, err := swiftgate.NewGatewayService(client, registry, sess, swiftgate.ServiceConfig{
		Credentials:   cfg.Upstream.Credentials(),
		RecordTimeout: time.Duration(cfg.Service.RecordTimeout) * time.Second,
	})
	if err != nil {
		_ = client.Close(ctx)
		closeDB()
		return nil, fmt.Errorf("create service: %w", err)
	}

	if err := service.Authenticate(ctx); err != nil {
		_ = client.Close(ctx)
		closeDB()
		return nil, fmt.Errorf("authenticate upstream: %w", err)
	}
	slog.Debug("authenticated upstream", "url", cfg.Upstream.URL, "account", sess.Account())

	return &gateway{client: client, service: service, closeDB: closeDB}, nil
}

// Close waits for in-flight transfers until ctx is done, then releases the
// client and the registry.
func (g *gateway) Close(ctx context.Context) error {
	err := g.client.Close(ctx)
	g.closeDB()
	return err
}
