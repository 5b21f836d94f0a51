package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sqlguard/sqlguard/internal/audit"
	"github.com/sqlguard/sqlguard/internal/config"
	"github.com/sqlguard/sqlguard/internal/datasource"
	"github.com/sqlguard/sqlguard/internal/logging"
	"github.com/sqlguard/sqlguard/internal/obsmetrics"
	"github.com/sqlguard/sqlguard/pkg/dialect"
	"github.com/sqlguard/sqlguard/pkg/sqlast"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

// app bundles the components every subcommand is built from, assembled
// once from the --config flag's resolved path.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	parser    *sqlast.Facade
	validator *validator.Validator
	registry  *prometheus.Registry
	metrics   *obsmetrics.Metrics
}

func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: loading configuration: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Filename:   cfg.Logging.Filename,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})

	parser, err := sqlast.NewFacade(sqlast.Options{})
	if err != nil {
		return nil, fmt.Errorf("sqlguard: building SQL parser: %w", err)
	}

	dedupCache, err := cfg.BuildDedupCache(context.Background(), logger)
	if err != nil {
		return nil, fmt.Errorf("sqlguard: building dedup cache: %w", err)
	}

	vcfg, err := cfg.ToValidatorConfig()
	if err != nil {
		return nil, fmt.Errorf("sqlguard: building validator configuration: %w", err)
	}

	v := validator.New(vcfg, parser, dedupCache, logger)

	registry := prometheus.NewRegistry()
	var metrics *obsmetrics.Metrics
	if cfg.Metrics.Enabled {
		metrics = obsmetrics.New(registry)
		v.WithMetrics(metrics)
	}

	return &app{cfg: cfg, logger: logger, parser: parser, validator: v, registry: registry, metrics: metrics}, nil
}

// openAudit opens the configured audit store, nil when no datasource
// driver is configured: audit persistence is optional, the validation
// core runs fine with nothing recording its violation history.
func (a *app) openAudit(ctx context.Context) (audit.Store, error) {
	if a.cfg.Datasource.Driver == "" {
		return nil, nil
	}
	return audit.Open(ctx, audit.Config{Driver: a.cfg.Datasource.Driver, DSN: a.cfg.Datasource.DSN}, a.logger)
}

// resolveDialect resolves the configured datasource's pkg/dialect.Strategy,
// used by the `validate --rewrite` path to drive limit injection.
func (a *app) resolveDialect(ctx context.Context) (dialect.Strategy, error) {
	resolver := datasource.NewResolver(dialect.NewFactory())
	return resolver.Resolve(ctx, "cmd/sqlguard", datasource.Config{
		Driver: a.cfg.Datasource.Driver,
		DSN:    a.cfg.Datasource.DSN,
	})
}

// newRunID mints a uuid identifying one scan invocation, the
// value audit records are grouped under (internal/audit.Record.RunID).
func newRunID() string {
	return uuid.New().String()
}
