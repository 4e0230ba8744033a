package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Output is JSON with an ISO8601
// "timestamp" key, written to filePath when set and to stdout otherwise.
func New(level, filePath string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	ws := zapcore.AddSync(os.Stdout)
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		ws = zapcore.AddSync(file)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, lvl)
	return zap.New(core, zap.AddCaller()), nil
}

// HTTP returns the logger for request logs and handler failures.
func HTTP(l *zap.Logger) *zap.Logger { return l.Named("http") }

// Auth returns the logger for registration, login and token checks.
func Auth(l *zap.Logger) *zap.Logger { return l.Named("auth") }

// Task returns the logger for the task mutation audit trail.
func Task(l *zap.Logger) *zap.Logger { return l.Named("task") }

// System returns the logger for startup, migration and shutdown.
func System(l *zap.Logger) *zap.Logger { return l.Named("system") }
