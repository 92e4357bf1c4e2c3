package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New создает логгер с общим форматом вывода
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Discard - логгер без вывода, для тестов
func Discard() *logrus.Logger {
	logger := New("panic")
	logger.SetOutput(io.Discard)
	return logger
}

// OrDefault возвращает l, либо новый логгер уровня info
func OrDefault(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return New("info")
}
