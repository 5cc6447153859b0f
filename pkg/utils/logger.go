package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogDir is where verbose runs write their log file. The TUI owns the
// terminal, so logs never go to stdout or stderr.
var LogDir = os.TempDir()

// InitLogger installs the global zap logger. Without verbose every log call
// is discarded.
func InitLogger(verbose bool) (string, error) {
	if !verbose {
		zap.ReplaceGlobals(zap.NewNop())
		return "", nil
	}

	logFileName := filepath.Join(LogDir, fmt.Sprintf("taskflow_%s.log", time.Now().Format("2006-01-02")))

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{logFileName}
	cfg.ErrorOutputPaths = []string{logFileName}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		zap.ReplaceGlobals(zap.NewNop())
		return "", fmt.Errorf("create log file: %w", err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Debug("verbose logging enabled", zap.String("file", logFileName))

	return logFileName, nil
}

// CloseLogger flushes buffered entries
func CloseLogger() {
	_ = zap.L().Sync()
}
