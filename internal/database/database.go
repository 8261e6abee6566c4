// Package database handles database connections, schema management and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	readMu sync.RWMutex
	readDB *gorm.DB
)

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// NewGormLogger returns a slog-backed GORM logger at warn level with slow query reporting.
func NewGormLogger(l *slog.Logger) *CustomGormLogger {
	return &CustomGormLogger{
		logger: l,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	}
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs SQL statements that failed or were slow.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// Connect opens the primary connection (and the read replica when configured)
// for the configured driver. Schema changes are applied separately by ApplySchema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	middleware.Logger.Info("Database connected", slog.String("driver", driverName(cfg)))

	if cfg.DBReadHost != "" && driverName(cfg) == DriverPostgres {
		replica, err := open(postgres.Open(readDSN(cfg)))
		if err != nil {
			middleware.Logger.Warn("Read replica unavailable, using primary for reads", slog.String("error", err.Error()))
		} else if err := configurePool(replica, cfg); err == nil {
			SetReadDB(replica)
			middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
		}
	}

	return db, nil
}

// OpenSQLite opens a SQLite database with foreign keys enforced. It backs
// DB_DRIVER=sqlite and the test helpers.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := open(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return db, nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(middleware.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := observability.RegisterQueryMetrics(db); err != nil {
		return nil, fmt.Errorf("register query metrics: %w", err)
	}
	return db, nil
}

func driverName(cfg *config.Config) string {
	if cfg.DBDriver == "" {
		return DriverPostgres
	}
	return cfg.DBDriver
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case DriverPostgres:
		return postgres.Open(primaryDSN(cfg)), nil
	case DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DBSQLitePath)), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func sslMode(cfg *config.Config) string {
	if cfg.DBSSLMode == "" {
		return "disable"
	}
	return cfg.DBSSLMode
}

func primaryDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode(cfg),
	)
}

func readDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword, cfg.DBName, sslMode(cfg),
	)
}

func sqliteDSN(path string) string {
	if path == "" {
		path = "ecomtrade.db"
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// configurePool applies pool limits, falling back to 25/5/5min.
func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	maxOpen, maxIdle, lifetime := cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMinutes
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	if lifetime <= 0 {
		lifetime = 5
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(lifetime) * time.Minute)
	return nil
}

// GetReadDB returns the read replica, or nil when none is configured.
func GetReadDB() *gorm.DB {
	readMu.RLock()
	defer readMu.RUnlock()
	return readDB
}

// SetReadDB installs (or with nil, clears) the read replica.
func SetReadDB(db *gorm.DB) {
	readMu.Lock()
	readDB = db
	readMu.Unlock()
}

// Close closes the primary and replica connection pools.
func Close(db *gorm.DB) error {
	var errs []error
	if replica := GetReadDB(); replica != nil {
		if sqlDB, err := replica.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
		SetReadDB(nil)
	}
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

// Ping verifies the primary connection is usable.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
