package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fooddash/console-api/config"
	"github.com/fooddash/console-api/internal/adapters/backend"
	"github.com/fooddash/console-api/internal/data"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Bootstrap *service.BootstrapService
	Devices   *service.DeviceService
	Alerts    *service.LoginAlertService

	// Metrics is the shared StatsD client; the caller closes it on
	// shutdown. Nil Sink methods are no-ops, so services take it as-is.
	Metrics *statsd.Client
}

// ServicesConfig contains dependencies for building services.
type ServicesConfig struct {
	Config *config.AppConfig
	DB     *sql.DB
	Stores Stores
	Logger *slog.Logger
}

// BuildServices wires the service layer: backend gateway with the
// interceptor chain, device tracking, login alerts, auth, and the
// bootstrap sequencer.
func BuildServices(cfg ServicesConfig) (ServiceContainer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	sink, err := statsd.NewClient(statsd.Config{
		Enabled: appCfg.Observability.StatsdEnabled,
		Address: appCfg.Observability.StatsdAddress,
		Prefix:  appCfg.Observability.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build statsd client: %w", err)
	}

	// The gateway's 401 hook clears the session holding the rejected
	// token. The auth service does not exist yet at client construction
	// time, so the hook binds late through the container.
	var container ServiceContainer
	container.Metrics = sink
	hook := func(token string) {
		if container.Auth == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		container.Auth.InvalidateToken(ctx, token)
	}

	gateway, err := backend.NewClient(backend.ClientOptions{
		BaseURL:        appCfg.Backend.BaseURL,
		Timeout:        appCfg.Backend.Timeout,
		OnUnauthorized: hook,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build backend client: %w", err)
	}

	deviceOpts := service.DeviceServiceOptions{
		Repo:     data.NewDeviceRepo(cfg.DB),
		Sessions: cfg.Stores.Sessions,
		Metrics:  sink,
		Logger:   logger,
	}

	if appCfg.LoginAlert.IsEnabled() {
		alerts, alertErr := service.NewLoginAlertService(service.LoginAlertOptions{
			WebhookURL: appCfg.LoginAlert.WebhookURL,
			Method:     appCfg.LoginAlert.Method,
			Headers:    appCfg.LoginAlert.Headers,
			BodyExpr:   appCfg.LoginAlert.BodyExpr,
			OkStatus:   appCfg.LoginAlert.OkStatus,
			HTTPClient: &http.Client{Timeout: appCfg.LoginAlert.Timeout},
			Logger:     logger,
		})
		if alertErr != nil {
			return ServiceContainer{}, fmt.Errorf("build login alert service: %w", alertErr)
		}
		container.Alerts = alerts
		deviceOpts.Alerts = alerts
	}

	container.Devices = service.NewDeviceService(deviceOpts)

	auth, err := BuildAuthService(AuthConfig{
		Auth:     appCfg.Auth,
		Gateway:  gateway,
		Sessions: cfg.Stores.Sessions,
		Devices:  container.Devices,
		Metrics:  sink,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}
	container.Auth = auth

	container.Bootstrap = service.NewBootstrapService(service.BootstrapServiceOptions{
		Gateway:             gateway,
		Sessions:            cfg.Stores.Sessions,
		Cache:               cfg.Stores.Cache,
		RequireSubscription: appCfg.Auth.RequireSubscription,
		CacheTTL:            appCfg.Backend.StateCacheTTL,
		Metrics:             sink,
		Logger:              logger,
	})

	return container, nil
}
