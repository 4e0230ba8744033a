package db

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tasktracker/internal/model"
)

const taskOwnerConstraint = "fk_tasks_user"

// NewMySQL returns a connected GORM DB instance with a bounded pool.
// parseTime is forced on so DATETIME columns scan into time.Time.
func NewMySQL(dsn string) (*gorm.DB, error) {
	dsnCfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	dsnCfg.ParseTime = true

	db, err := gorm.Open(mysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates the users and tasks tables and the explicit task owner
// foreign key. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if db.Migrator().HasConstraint(&model.Task{}, taskOwnerConstraint) {
		return nil
	}
	err := db.Exec(fmt.Sprintf(
		"ALTER TABLE tasks ADD CONSTRAINT %s FOREIGN KEY (user_id) REFERENCES users (id)",
		taskOwnerConstraint,
	)).Error
	if err != nil {
		return fmt.Errorf("add %s: %w", taskOwnerConstraint, err)
	}
	return nil
}

// Reset drops every table owned by the service, tasks first.
func Reset(db *gorm.DB) error {
	for _, table := range []interface{}{&model.Task{}, &model.User{}} {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
