package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBPluginConfig holds configuration for database instrumentation.
type DBPluginConfig struct {
	Tracing         bool          // register otelgorm spans
	LogFullSQL      bool          // keep query variables in spans (dev only)
	SlowQueryThresh time.Duration // statements slower than this are logged and flagged
	DBName          string
}

// DBPlugin instruments GORM with otelgorm spans, Prometheus query latency
// and slow query logging.
type DBPlugin struct {
	config  DBPluginConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewDBPlugin creates the plugin; metrics may be nil
func NewDBPlugin(cfg DBPluginConfig, metrics *Metrics, logger *zap.Logger) *DBPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "seafresh"
	}
	return &DBPlugin{config: cfg, metrics: metrics, logger: logger}
}

// Name implements gorm.Plugin
func (p *DBPlugin) Name() string { return "seafresh:telemetry" }

// Initialize implements gorm.Plugin
func (p *DBPlugin) Initialize(db *gorm.DB) error {
	if p.config.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
		if !p.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	hooks := []struct {
		op       string
		before   func(string, func(*gorm.DB)) error
		after    func(string, func(*gorm.DB)) error
		gormName string
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register, "create"},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register, "query"},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register, "update"},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register, "delete"},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register, "row"},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register, "raw"},
	}
	for _, h := range hooks {
		if err := h.before("telemetry:before_"+h.gormName, p.before); err != nil {
			return err
		}
		op := h.op
		if err := h.after("telemetry:after_"+h.gormName, func(db *gorm.DB) { p.after(db, op) }); err != nil {
			return err
		}
	}

	p.logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", p.config.Tracing),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh))
	return nil
}

type queryStartKey struct{}

func (p *DBPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBPlugin) after(db *gorm.DB, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	var err error
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		err = db.Error
	}
	if p.metrics != nil {
		p.metrics.ObserveQuery(operation, db.Statement.Table, elapsed, err)
	}

	if elapsed < p.config.SlowQueryThresh {
		return
	}
	p.logger.Warn("Slow query",
		zap.String("operation", operation),
		zap.String("table", db.Statement.Table),
		zap.Duration("took", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
