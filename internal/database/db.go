package database

import (
	"context"
	"errors"
	"time"

	"donation-api/internal/logger"
	"donation-api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.AdminUser{},
		&model.Campaign{},
		&model.Donation{},
		&model.CommunityRequest{},
		&model.AuditLog{},
	}
}

// NewConnection opens the postgres pool and migrates the schema.
func NewConnection(dsn string, log logger.ILogger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		log.Warn("database", "auto-migrate failed", map[string]interface{}{"error": err})
	}

	return db, nil
}

// gormLogger forwards gorm's own logging to the service logger.
type gormLogger struct {
	log   logger.ILogger
	level gormlogger.LogLevel
}

func NewGormLogger(log logger.ILogger) gormlogger.Interface {
	return &gormLogger{log: log, level: gormlogger.Warn}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info("gorm", msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn("gorm", msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error("gorm", msg, map[string]interface{}{"args": args})
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error("gorm", "query failed", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(), "error": err,
		})
	case elapsed > slowQueryThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("gorm", "slow query", map[string]interface{}{
			"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds(),
		})
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("gorm", "query", map[string]interface{}{"sql": sql, "rows": rows})
	}
}
