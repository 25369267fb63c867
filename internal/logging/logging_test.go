package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"info", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"error", zap.ErrorLevel},
		{"", zap.InfoLevel},
		{"verbose", zap.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			logger, err := New(env, "warn")
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if logger.Core().Enabled(zap.InfoLevel) {
				t.Error("expected info to be filtered at warn level")
			}
			if !logger.Core().Enabled(zap.ErrorLevel) {
				t.Error("expected error to be enabled")
			}
		})
	}
}
