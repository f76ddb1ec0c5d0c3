package logger

import (
	"sync"

	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/sirupsen/logrus"
)

var (
	global   *AppLogger
	globalMu sync.RWMutex
)

func init() {
	// A usable default until InitGlobal is called from main.
	global, _ = NewAppLogger(models.LoggerConfig{Level: "info"})
}

// InitGlobal installs the process-wide logger.
func InitGlobal(l *AppLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = l
}

func get() *AppLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

func Debug(msg string, fields ...Field) {
	get().WithFields(logrus.Fields(fieldsToMap(fields))).Debug(msg)
}

func Info(msg string, fields ...Field) {
	get().WithFields(logrus.Fields(fieldsToMap(fields))).Info(msg)
}

func Warn(msg string, fields ...Field) {
	get().WithFields(logrus.Fields(fieldsToMap(fields))).Warn(msg)
}

func Error(msg string, fields ...Field) {
	get().WithFields(logrus.Fields(fieldsToMap(fields))).Error(msg)
}

func Fatal(msg string, fields ...Field) {
	get().WithFields(logrus.Fields(fieldsToMap(fields))).Fatal(msg)
}
