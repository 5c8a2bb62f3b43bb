package logger

import (
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// GormLogger returns a gorm logger that writes through the shared logrus instance.
// Record-not-found errors are not logged; fixture lookups expect them.
func GormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	if level == 0 {
		level = gormlogger.Warn
	}
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
