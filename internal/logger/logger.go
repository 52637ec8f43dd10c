package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logsMaxSize    = 10 // megabytes
	logsMaxBackups = 3
	logsMaxAge     = 7 // days

	timeLayout = "2006-01-02 15:04:05,000"
)

// New builds the process logger. Lines go to stdout as
// "<timestamp> - <LEVEL> - <message>"; when file is set they are also written
// as JSON to a rotated log file.
func New(level, file string) (*zap.Logger, error) {
	atomicLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	core := NewCore(zapcore.AddSync(os.Stdout), atomicLevel)

	if file != "" {
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    logsMaxSize,
			MaxBackups: logsMaxBackups,
			MaxAge:     logsMaxAge,
		})

		productionCfg := zap.NewProductionEncoderConfig()
		productionCfg.TimeKey = "timestamp"
		productionCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		productionCfg.EncodeLevel = levelEncoder

		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(productionCfg), fileSink, atomicLevel))
	}

	return zap.New(core), nil
}

// NewCore returns the console core used for stdout.
func NewCore(out zapcore.WriteSyncer, level zapcore.LevelEnabler) zapcore.Core {
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), out, level)
}

// ParseLevel accepts zap level names plus "critical" as an alias for fatal.
func ParseLevel(level string) (zap.AtomicLevel, error) {
	if level == "critical" || level == "CRITICAL" {
		return zap.NewAtomicLevelAt(zapcore.FatalLevel), nil
	}

	var l zapcore.Level
	if err := l.Set(level); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("failed to set log level: %w", err)
	}

	return zap.NewAtomicLevelAt(l), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      levelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

// levelEncoder prints fatal entries as CRITICAL.
func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapcore.FatalLevel {
		enc.AppendString("CRITICAL")
		return
	}
	enc.AppendString(l.CapitalString())
}
