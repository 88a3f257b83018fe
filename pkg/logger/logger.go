package logger

import (
	"os"

	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ILogger is the subset of *zap.Logger the toolkit logs through.
type ILogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Sync() error
}

// LoadLogger builds a logger writing console output to stderr and, when a
// file path is configured, JSON lines to a rotating file.
func LoadLogger(env env.LoggerEnv) (ILogger, error) {
	level, err := zapcore.ParseLevel(env.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level),
	}
	if env.FilePath != "" {
		writer := &lumberjack.Logger{
			Filename:   env.FilePath,
			MaxSize:    env.MaxSize,
			MaxAge:     env.MaxAge,
			MaxBackups: env.MaxBackups,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
