package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns the program logger. The terminal belongs to the TUI, so
// everything goes to a file; level "none" disables logging. The returned
// function flushes and closes the file.
func NewLogger(conf LogConfig) (*zap.Logger, func(), error) {
	var level zapcore.Level
	switch conf.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "normal":
		level = zapcore.InfoLevel
	default:
		return zap.NewNop(), func() {}, nil
	}

	dest := conf.Destination
	if dest == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, nil, err
		}
		dest = filepath.Join(dir, appName+".log")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.Mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to access log destination (%s): %w", dest, err)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(f), zap.NewAtomicLevelAt(level))
	log := zap.New(core, zap.AddCaller()).Named(appName)

	return log, func() {
		_ = log.Sync()
		_ = f.Close()
	}, nil
}
