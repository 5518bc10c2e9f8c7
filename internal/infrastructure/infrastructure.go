// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, metrics, the recipient API client)
// that the portal and terminal hosts require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/recipient"
	"github.com/JaimeStill/decline/pkg/lifecycle"
)

// Infrastructure holds the core systems shared by the hosts.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Recipient *recipient.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := recipient.New(&cfg.Upstream, nil, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("recipient client init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Registry:  reg,
		Recipient: client,
	}, nil
}

// Start registers infrastructure hooks with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		i.Logger.Info("infrastructure stopped")
	})
	return nil
}
