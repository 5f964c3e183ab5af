// Package logging builds the process logger. INFO/WARN go to stdout, ERROR
// and above to stderr. If a log file is given, every level is also written
// there.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stdout and stderr, plus logPath when set.
// The returned cleanup closes the log file and flushes buffered entries.
func New(logPath string) (*zap.Logger, func(), error) {
	var file *os.File
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		file = f
	}

	var fileW io.Writer
	if file != nil {
		fileW = file
	}
	log := build(os.Stdout, os.Stderr, fileW)

	cleanup := func() {
		_ = log.Sync()
		if file != nil {
			file.Close()
		}
	}
	return log, cleanup, nil
}

func build(stdout, stderr, file io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	console := zapcore.NewConsoleEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.InfoLevel && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.AddSync(stdout), low),
		zapcore.NewCore(console, zapcore.AddSync(stderr), high),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), zapcore.DebugLevel))
	}
	return zap.New(zapcore.NewTee(cores...))
}
