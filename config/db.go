package config

import (
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the submission ledger database: MySQL when a DSN is
// configured, a local SQLite file otherwise.
func NewDB(c DB) (*gorm.DB, error) {
	logMode := logger.Warn
	if c.LogOff {
		logMode = logger.Silent
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logMode,
			Colorful:      true,
		},
	)

	dialector := sqlite.Open(c.SQLitePath)
	if c.DSN != "" {
		dialector = mysql.Open(c.DSN)
	}
	return gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
}
