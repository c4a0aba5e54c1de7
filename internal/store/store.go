// Package store opens database handles for the application's relational
// backends: PostgreSQL, Aurora DSQL, and SQLite for local development.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nimbusworks/nimbus/internal/config"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			// Timestamps are stored in UTC; callers convert for display.
			return time.Now().UTC()
		},
	}
}

// Open connects to PostgreSQL and applies the configured pool limits.
func Open(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTime) * time.Minute)
	}
	return db, nil
}

// OpenSQLite opens a SQLite database at the given path. Use ":memory:" for
// an ephemeral database in tests and local demos.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm open sqlite: %w", err)
	}
	return db, nil
}

// OpenDSQL connects to an Aurora DSQL cluster using an IAM admin auth token
// as the password. DSQL tokens are short-lived, so the connection pool is
// kept small and recycled frequently.
func OpenDSQL(ctx context.Context, awsCfg aws.Config, cfg *config.DSQLConfig) (*gorm.DB, error) {
	token, err := auth.GenerateDBConnectAdminAuthToken(ctx, cfg.Endpoint, cfg.Region, awsCfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("dsql auth token: %w", err)
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=5432 sslmode=require",
		cfg.Endpoint, cfg.User, token, cfg.Database,
	)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm open dsql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return db, nil
}
