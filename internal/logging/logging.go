/*
DESCRIPTION
  logging.go wires up the encoder's structured logger: zap for structured,
  leveled logging and lumberjack for log file rotation, matching the
  ambient logging stack used across the example corpus's production
  services rather than the standard library's log package.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

// Package logging configures the encoder's zap-based structured logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how encoder logs are written.
type Config struct {
	// FilePath, if non-empty, directs logs to a rotated file via
	// lumberjack instead of stderr.
	FilePath string

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int

	// MaxBackups is the number of rotated log files to retain.
	MaxBackups int

	// Debug enables debug-level logging; otherwise info level and above.
	Debug bool
}

// New builds a *zap.Logger per cfg. With no FilePath set, it logs to
// stderr using zap's production JSON encoding; callers in short-lived CLI
// contexts may prefer zap.NewDevelopment-style console output instead by
// constructing their own core.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var ws zapcore.WriteSyncer
	if cfg.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxOr(cfg.MaxSizeMB, 50),
			MaxBackups: maxOr(cfg.MaxBackups, 5),
			Compress:   true,
		}
		ws = zapcore.AddSync(lj)
	} else {
		ws = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), ws, level)
	return zap.New(core, zap.AddCaller()), nil
}

func maxOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
