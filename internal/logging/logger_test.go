package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, expected := range testCases {
		if level := ParseLevel(input); level != expected {
			t.Fatalf("ParseLevel(%q) = %s, expected %s", input, level, expected)
		}
	}
}

func TestNewLoggerWritesToRotatingFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filmfolio.log")

	logger, err := NewLogger(Options{Level: "debug", FilePath: logPath})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	logger.Info("watchlist loaded", zap.Int("entries", 3))
	_ = logger.Sync()

	contents, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(contents), `"msg":"watchlist loaded"`) {
		t.Fatalf("expected entry in log file, got %s", contents)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filmfolio.log")

	logger, err := NewLogger(Options{Level: "error", FilePath: logPath})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	logger.Info("suppressed")
	logger.Error("kept")
	_ = logger.Sync()

	contents, _ := os.ReadFile(logPath)
	if strings.Contains(string(contents), "suppressed") {
		t.Fatalf("info entry must be filtered at error level")
	}
	if !strings.Contains(string(contents), "kept") {
		t.Fatalf("expected error entry in log file")
	}
}
