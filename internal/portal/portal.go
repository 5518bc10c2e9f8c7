// Package portal serves the recipient-facing signing pages and hosts the
// rejection workflow for each visitor in a server-side session.
package portal

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/infrastructure"
	"github.com/JaimeStill/decline/pkg/middleware"
	"github.com/JaimeStill/decline/pkg/module"
	"github.com/JaimeStill/decline/pkg/routes"
	"github.com/JaimeStill/decline/pkg/web"
)

// AssetsPrefix is the root-level path the portal stylesheet and script are served under.
const AssetsPrefix = "/assets/"

const sweepInterval = time.Minute

// NewModule creates the portal module with request logging, the CORS policy
// for embedding hosts, and per-client rate limiting, and registers the session
// sweeper with the lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	h, err := NewHandler(&cfg.Portal, infra.Recipient, infra.Registry, infra.Logger)
	if err != nil {
		return nil, err
	}

	group := h.Routes()
	router := web.NewRouter()
	routes.Register(router, group)
	router.SetFallback(h.NotFound)

	limiter := middleware.NewRateLimiter(cfg.Portal.RateLimit, cfg.Portal.RateBurst, cfg.Portal.SessionTTLDuration())

	m := module.New(cfg.Portal.BasePath, router)
	m.Use(middleware.Logger(infra.Logger))
	m.Use(middleware.Recover(infra.Logger))
	m.Use(middleware.CORS(&cfg.Portal.CORS))
	m.Use(middleware.RateLimit(limiter))

	logger := infra.Logger.With("system", "portal")
	logger.Debug("routes registered", "prefix", cfg.Portal.BasePath, "patterns", routes.Patterns(group))
	infra.Lifecycle.Every(sweepInterval, func() {
		sessions := h.Sessions().Sweep()
		clients := limiter.Sweep()
		if sessions > 0 || clients > 0 {
			logger.Debug("swept idle state", "sessions", sessions, "clients", clients)
		}
	})

	return m, nil
}

// Assets returns the handler for the portal's static files under AssetsPrefix.
func Assets() (http.Handler, error) {
	h, err := web.Assets(content, "static", AssetsPrefix)
	if err != nil {
		return nil, fmt.Errorf("portal assets: %w", err)
	}
	return h, nil
}
