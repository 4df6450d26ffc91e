// Package database opens the gorm connection pool shared by every request and
// migrates the chat schema.
package database

import (
	"fmt"
	"strings"
	"time"

	"LenaAI/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Dialector picks the gorm driver for the configured DB_DRIVER.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres, "postgresql", "pgx":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects, configures the pool and runs AutoMigrate for users and messages.
func Open(driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if strings.EqualFold(driver, DriverSQLite) || driver == "" {
		// sqlite serialises writers; one connection avoids "database is locked" under load
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	level, emit := gormlogger.Warn, zerolog.WarnLevel
	if log.GetLevel() <= zerolog.DebugLevel {
		level, emit = gormlogger.Info, zerolog.DebugLevel
	}
	return gormlogger.New(zerologWriter{log: log, level: emit}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// zerologWriter adapts gorm's printf-style logger to zerolog.
type zerologWriter struct {
	log   zerolog.Logger
	level zerolog.Level
}

func (w zerologWriter) Printf(format string, args ...any) {
	w.log.WithLevel(w.level).Str("component", "gorm").Msg(fmt.Sprintf(format, args...))
}

// MemoryDSN names a private in-memory sqlite database, used by tests and
// throwaway local runs.
func MemoryDSN(name string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_")
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", r.Replace(name))
}
