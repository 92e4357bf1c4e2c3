package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqliteParams - ожидание блокировки и немедленный захват записи в транзакциях
var sqliteParams = []string{"_busy_timeout=5000", "_txlock=immediate", "_foreign_keys=1"}

// Open открывает соединение с БД выбранного драйвера
func Open(driver, dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(SQLiteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if logger != nil {
		logger.WithField("driver", dialector.Name()).Info("Database connection established")
	}
	return db, nil
}

// newGormLogger пишет SQL журнал gorm через logrus с уровнем, согласованным с логгером приложения
func newGormLogger(logger *logrus.Logger) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Warn)
	}

	logLevel := gormlogger.Warn
	switch {
	case !logger.IsLevelEnabled(logrus.WarnLevel):
		logLevel = gormlogger.Silent
	case logger.IsLevelEnabled(logrus.DebugLevel):
		logLevel = gormlogger.Info
	}

	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}

// SQLiteDSN дополняет путь к файлу SQLite нужными параметрами
func SQLiteDSN(dsn string) string {
	var missing []string
	for _, param := range sqliteParams {
		key := param[:strings.Index(param, "=")+1]
		if !strings.Contains(dsn, key) {
			missing = append(missing, param)
		}
	}
	if len(missing) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}
