package logger

import (
	"os"

	"github.com/mattn/go-isatty"
	zp "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.ytsaurus.tech/library/go/core/log"
	"go.ytsaurus.tech/library/go/core/log/zap"
)

// Log is the process-wide logger. Commands replace it once flags are parsed;
// the default is a debug-level console logger so tests and early init have
// something to write to.
var Log log.Logger

func init() {
	Log = zap.Must(DefaultLoggerConfig(zpcoreLevelFromEnv()))
}

func zpcoreLevelFromEnv() zapcore.Level {
	if lvl, err := zapcore.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		return lvl
	}
	return zapcore.DebugLevel
}

func levelEncoder() zapcore.LevelEncoder {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return zapcore.CapitalColorLevelEncoder
	}
	return zapcore.CapitalLevelEncoder
}

func DefaultLoggerConfig(level zapcore.Level) zp.Config {
	return zp.Config{
		Level:            zp.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "ts",
			CallerKey:      "caller",
			NameKey:        "name",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder(),
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}
}
