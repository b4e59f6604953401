// Package di provides dependency injection container
package di

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/pegasus/pkg/catalog"
	"github.com/ssargent/pegasus/pkg/config"
	"github.com/ssargent/pegasus/pkg/segment"
)

// CatalogOpener opens the segment catalog stored in dir
type CatalogOpener func(dir string) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        *slog.Logger
	registry      *prometheus.Registry
	metrics       *segment.Metrics
	catalogOpener CatalogOpener
}

// NewContainer creates a new dependency injection container for cfg. Logs
// go to logOutput, or stderr when it is nil.
func NewContainer(cfg *config.Config, logOutput io.Writer) *Container {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logOutput == nil {
		logOutput = os.Stderr
	}

	registry := prometheus.NewRegistry()
	return &Container{
		config:        cfg,
		logger:        newLogger(cfg, logOutput),
		registry:      registry,
		metrics:       segment.NewMetrics(registry),
		catalogOpener: catalog.Open,
	}
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GetConfig returns the loaded configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// GetRegistry returns the Prometheus registry holding the writer metrics
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetMetrics returns the segment writer metrics
func (c *Container) GetMetrics() *segment.Metrics {
	return c.metrics
}

// OpenCatalog opens the configured segment catalog
func (c *Container) OpenCatalog() (*catalog.Catalog, error) {
	return c.catalogOpener(c.config.CatalogDir())
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(opener CatalogOpener) {
	c.catalogOpener = opener
}

// WriterOptions returns the segment writer options derived from the configuration
func (c *Container) WriterOptions() []segment.Option {
	return []segment.Option{
		segment.WithBufferSize(c.config.Segment.BufferSize),
		segment.WithSync(c.config.Segment.Sync),
		segment.WithLogger(c.logger),
		segment.WithMetrics(c.metrics),
	}
}
