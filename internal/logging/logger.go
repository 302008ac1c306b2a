package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "monitor.log"

// NewLogger builds the process logger: a console core on stderr teed with a
// JSON core writing to logDir/monitor.log through lumberjack. logDir is
// created if missing. The returned func flushes the logger and closes the
// log file; call it before exiting.
func NewLogger(logDir, level string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	file := zapcore.AddSync(rotator)

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "ts"
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCfg.CallerKey = ""

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), file, lvl),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), lvl),
	)
	logger := zap.New(core)
	closeFn := func() {
		_ = logger.Sync()
		_ = rotator.Close()
	}
	return logger, closeFn, nil
}
