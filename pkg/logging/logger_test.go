package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/bookmarkd/bookmarkd/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		wantLvl zapcore.Level
	}{
		{"json info", config.LoggingConfig{Level: "INFO", Format: "json"}, zapcore.InfoLevel},
		{"text debug", config.LoggingConfig{Level: "DEBUG", Format: "text"}, zapcore.DebugLevel},
		{"bad level falls back to info", config.LoggingConfig{Level: "bogus", Format: "json"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("InitLogger() error: %v", err)
			}
			if Logger == nil {
				t.Fatal("Logger should be set after InitLogger")
			}
			if !Logger.Core().Enabled(tt.wantLvl) {
				t.Errorf("logger should be enabled at %s", tt.wantLvl)
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger() should never return nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := WithComponent("test-component")
	if logger == nil {
		t.Fatal("WithComponent() should return a logger")
	}
}
