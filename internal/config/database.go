package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

var errNoDatabase = errors.New("database not initialized")

// ConnectDatabase opens the MySQL pool, retrying while the server comes up
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	level := logger.Error
	if cfg.IsDev() {
		level = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// loan transitions run their own transactions
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().Local() },
	}

	attempts := max(cfg.Database.ConnectRetries, 1)
	var lastErr error
	for i := 1; i <= attempts; i++ {
		db, err := open(cfg.Database, gormCfg)
		if err == nil {
			DB = db
			log.Printf("✅ Database connected [%s:%s/%s] pool=%d/%d",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName,
				cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
			return db, nil
		}
		lastErr = err
		if i < attempts {
			wait := time.Duration(i) * 2 * time.Second
			log.Printf("⏳ Database not ready (attempt %d/%d): %v, retrying in %s", i, attempts, err, wait)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

func open(d DatabaseConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               buildDSN(d),
		DefaultStringSize: 191,
	}), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(d.MaxIdleConns)
	sqlDB.SetMaxOpenConns(d.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(d.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// buildDSN returns the go-sql-driver connection string. Timestamps are
// parsed in the configured business timezone.
func buildDSN(d DatabaseConfig) string {
	loc := d.Timezone
	if loc == "" {
		loc = "Local"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, url.QueryEscape(loc))
}

// CloseDatabase closes the pool
func CloseDatabase() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	log.Println("🔌 Closing database pool")
	return sqlDB.Close()
}

// HealthCheck pings the database
func HealthCheck(ctx context.Context) error {
	if DB == nil {
		return errNoDatabase
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PoolStats reports the pool counters shown on /health
func PoolStats() (sql.DBStats, error) {
	if DB == nil {
		return sql.DBStats{}, errNoDatabase
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
