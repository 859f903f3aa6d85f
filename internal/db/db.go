package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/staplewise/marketplace-backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func BuildDSN(cfg config.DBConfig) string {
	addr := cfg.Host

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.Host, "tcp(") || strings.HasPrefix(cfg.Host, "unix(") {
		// already wrapped
	} else if strings.HasPrefix(cfg.Host, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.Host)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.Host, cfg.Port)
	}

	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Password, addr, cfg.Name)
}

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// Users can be deleted while their products and orders stay behind.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "mysql", "":
		gcfg.PrepareStmt = true
		dialector = mysql.Open(BuildDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// Every new connection to :memory: is a fresh database.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// OpenInMemory returns a migrated in-memory SQLite database.
func OpenInMemory() (*gorm.DB, error) {
	conn, err := Connect(config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
