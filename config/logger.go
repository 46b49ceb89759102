package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects console log level: none, normal or debug.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Prepare returns console logger, errors go to stderr, everything else to
// stdout.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	var low zapcore.Level
	switch conf.Level {
	case "debug":
		low = zapcore.DebugLevel
	case "normal":
		low = zapcore.InfoLevel
	default:
		return zap.NewNop(), nil
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	enc := zapcore.NewConsoleEncoder(ec)

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return low <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lowPriority),
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), highPriority),
	)
	return zap.New(core, zap.AddCaller()).Named("attachsizer"), nil
}
