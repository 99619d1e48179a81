package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/etnz/gestor/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		cfg  config.LogConfig
		want zapcore.Level
	}{
		{config.LogConfig{Level: "debug", Encoding: "json"}, zapcore.DebugLevel},
		{config.LogConfig{Level: "INFO", Encoding: "console"}, zapcore.InfoLevel},
		{config.LogConfig{Level: "loud"}, zapcore.WarnLevel},
		{config.LogConfig{}, zapcore.WarnLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.cfg.Level, func(t *testing.T) {
			log, err := New(tc.cfg)
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if !log.Core().Enabled(tc.want) {
				t.Errorf("level %v disabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1) {
				t.Errorf("level %v enabled, want %v minimum", tc.want-1, tc.want)
			}
		})
	}
}
