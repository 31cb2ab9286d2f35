package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the application log written inside the logs directory.
const LogFileName = "ai_coder.log"

// NewLogger builds the application logger: human-readable lines on stderr
// and JSON lines appended to <logsDir>/ai_coder.log. Info level by default,
// debug when verbose. The returned function flushes and closes the file.
func NewLogger(logsDir string, verbose bool) (*zap.Logger, func() error, error) {
	return newLogger(logsDir, verbose, os.Stderr)
}

func newLogger(logsDir string, verbose bool, console io.Writer) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating logs directory %s: %w", logsDir, err)
	}
	logPath := filepath.Join(logsDir, LogFileName)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(console), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), level),
	)
	logger := zap.New(core).Named("ai_coder")

	closeFn := func() error {
		_ = logger.Sync()
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		return nil
	}
	return logger, closeFn, nil
}
