package utils

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ConfigureLogger 設定全域 logrus：production 使用 JSON，其餘使用彩色文字輸出
func ConfigureLogger(level, format string) *logrus.Logger {
	log := logrus.StandardLogger()
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'", level)
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	return log
}
