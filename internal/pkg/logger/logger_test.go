package logger

import (
	"sync"
	"testing"

	"go.uber.org/zap/zapcore"
)

func resetLogger() {
	global = nil
	once = sync.Once{}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"production json", "info", "json", zapcore.InfoLevel, false},
		{"development console", "debug", "console", zapcore.DebugLevel, false},
		{"error level", "error", "json", zapcore.ErrorLevel, false},
		{"unknown format falls back to json", "warn", "yaml", zapcore.WarnLevel, false},
		{"bad level", "loud", "json", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger()
			err := Init(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
			}
			if !tt.wantErr && GetLevel() != tt.wantLevel {
				t.Errorf("GetLevel() = %v, want %v", GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestInit_SecondCallIsNoOp(t *testing.T) {
	resetLogger()

	if err := Init("info", "json"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := Init("debug", "console"); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if GetLevel() != zapcore.InfoLevel {
		t.Errorf("second Init changed level to %v", GetLevel())
	}
}

func TestSetLevel(t *testing.T) {
	resetLogger()
	if err := Init("info", "json"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) error = %v", err)
	}
	if GetLevel() != zapcore.DebugLevel {
		t.Errorf("GetLevel() = %v, want debug", GetLevel())
	}
	if err := SetLevel("silent"); err == nil {
		t.Error("SetLevel(silent) should fail")
	}
}

func TestL_PanicsWithoutInit(t *testing.T) {
	resetLogger()
	defer func() {
		if recover() == nil {
			t.Error("L() should panic before Init()")
		}
	}()
	L()
}

func TestLogAndSync(t *testing.T) {
	resetLogger()

	// Sync before Init is a no-op.
	if err := Sync(); err != nil {
		t.Errorf("Sync() before Init error = %v", err)
	}

	if err := Init("debug", "json"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	_ = Sync() // stderr sync errors are expected under test
}
