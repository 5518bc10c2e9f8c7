package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/infrastructure"
	"github.com/JaimeStill/decline/internal/portal"
	"github.com/JaimeStill/decline/pkg/handlers"
	"github.com/JaimeStill/decline/pkg/module"
)

type Modules struct {
	Portal *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	portalModule, err := portal.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		Portal: portalModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.Portal)
}

func buildRouter(infra *infrastructure.Infrastructure) (*module.Router, error) {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.Handle("GET /metrics", promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{
		Registry: infra.Registry,
	}))

	assets, err := portal.Assets()
	if err != nil {
		return nil, err
	}
	router.Handle("GET "+portal.AssetsPrefix, assets)

	return router, nil
}
