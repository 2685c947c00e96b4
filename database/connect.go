package database

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/config"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DSN builds the Postgres connection string for the hosted database.
func DSN(c map[string]string, hostKey string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(c, hostKey, ""),
		config.GetString(c, "SUPABASE_DB_USER", ""),
		config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
		config.GetString(c, "SUPABASE_DB_NAME", "postgres"),
		config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		config.GetString(c, "SUPABASE_DB_SSLMODE", "require"),
	)
}

// Open connects to the Supabase Postgres database. When
// SUPABASE_DB_REPLICA_HOST is set, reads are routed to that replica.
func Open(c map[string]string) (*gorm.DB, error) {
	if dbType := config.GetString(c, "DB_TYPE", "supa"); dbType != "supa" {
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  DSN(c, "SUPABASE_DB_HOST"),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if replicaHost := config.GetString(c, "SUPABASE_DB_REPLICA_HOST", ""); replicaHost != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  DSN(c, "SUPABASE_DB_REPLICA_HOST"),
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Str("replica", replicaHost).Msg("read replica registered")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the tables backing every model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	return db.AutoMigrate(models.All()...)
}
