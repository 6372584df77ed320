package database

import (
	"fmt"

	"microblog/internal/config"
	"microblog/internal/logger"
	"microblog/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector picks the gorm driver for a configured database driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// Connect opens a gorm connection with unique and foreign key violations
// translated to gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func Connect(driver, dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	if driver == config.DriverSQLite {
		// SQLite allows one writer at a time.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("AutoMigrate completed", "tables", len(models.AllModels()))
	return nil
}
