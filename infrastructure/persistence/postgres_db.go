package persistence

import (
	"database/sql"
	"time"

	"ai-promoter/infrastructure/configuration"
	"ai-promoter/infrastructure/logger"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgreSQLDB opens the primary store. DATABASE_URL wins over the discrete host settings.
func NewPostgreSQLDB(cfg configuration.Db) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.GetLogger().WithField("host", cfg.Host).Info("Connected to PostgreSQL")
	return db, nil
}

// NewGormDB layers gorm over an already opened connection pool.
func NewGormDB(sqlDB *sql.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
