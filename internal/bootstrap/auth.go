package bootstrap

import (
	"log/slog"

	"github.com/fooddash/console-api/config"
	"github.com/fooddash/console-api/internal/adapters/authroles"
	"github.com/fooddash/console-api/internal/adapters/devauth"
	"github.com/fooddash/console-api/internal/adapters/oidc"
	"github.com/fooddash/console-api/internal/observability/statsd"
	"github.com/fooddash/console-api/internal/ports"
	"github.com/fooddash/console-api/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Gateway  ports.BackendGateway
	Sessions ports.SessionStore
	Devices  *service.DeviceService
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth
// mode. The password mode needs no provider; the SSO modes fail here
// when their provider cannot be constructed, so a misconfigured
// deployment refuses to start instead of refusing every login.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	opts := service.AuthServiceOptions{
		Gateway:    cfg.Gateway,
		Sessions:   cfg.Sessions,
		Devices:    cfg.Devices,
		SessionTTL: cfg.Auth.SessionTTL,
		Metrics:    cfg.Metrics,
		Logger:     cfg.Logger,
	}

	switch cfg.Auth.Mode {
	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Scope:        cfg.Auth.OIDC.Scope,
			DiscoveryURL: cfg.Auth.OIDC.DiscoveryURL,
		})
		if err != nil {
			return nil, err
		}
		opts.Provider = prov
		opts.Roles = roleMapper(cfg.Auth.RoleGroups)

	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Subject: cfg.Auth.DevAuth.Subject,
			Email:   cfg.Auth.DevAuth.Email,
			Groups:  cfg.Auth.DevAuth.Groups,
		})
		if err != nil {
			return nil, err
		}
		opts.Provider = prov
		opts.Roles = roleMapper(cfg.Auth.RoleGroups)

	case config.AuthModePassword:
		// Credentials go straight to the backend gateway.
	}

	return service.NewAuthService(opts), nil
}

func roleMapper(groups config.RoleGroupsConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		OwnerGroup:   groups.Owner,
		ManagerGroup: groups.Manager,
		KitchenGroup: groups.Kitchen,
		RiderGroup:   groups.Rider,
	}
}
