package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  LogLevel
		wantKnown bool
	}{
		{name: "debug", input: "debug", expected: LevelDebug, wantKnown: true},
		{name: "info", input: "info", expected: LevelInfo, wantKnown: true},
		{name: "warn", input: "warn", expected: LevelWarn, wantKnown: true},
		{name: "warning alias", input: "warning", expected: LevelWarn, wantKnown: true},
		{name: "error", input: "error", expected: LevelError, wantKnown: true},
		{name: "case insensitive", input: "DEBUG", expected: LevelDebug, wantKnown: true},
		{name: "surrounding spaces", input: "  error ", expected: LevelError, wantKnown: true},
		{name: "empty defaults to info", input: "", expected: LevelInfo, wantKnown: false},
		{name: "garbage defaults to info", input: "loud", expected: LevelInfo, wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			if known != tt.wantKnown {
				t.Errorf("ParseLevel(%q) known = %v, want %v", tt.input, known, tt.wantKnown)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want LogLevel
	}{
		{"nothing set", nil, LevelInfo},
		{"shared variable", map[string]string{EnvLevelShared: "warn"}, LevelWarn},
		{"own variable wins", map[string]string{EnvLevel: "error", EnvLevelShared: "debug"}, LevelError},
		{"unknown own value falls through", map[string]string{EnvLevel: "loud", EnvLevelShared: "warn"}, LevelWarn},
		{"debug flag", map[string]string{EnvDebug: "true", EnvLevel: "error"}, LevelDebug},
		{"debug flag off", map[string]string{EnvDebug: "0"}, LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levelFromEnv(func(key string) string { return tt.env[key] })
			if got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogLevelOrdering(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestSetOutputAndLevel(t *testing.T) {
	original := GetLevel()
	defer SetLevel(original)
	defer SetOutput(os.Stderr)

	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel(LevelWarn)
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("Info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Errorf("Expected warn message in output, got %q", out)
	}

	buf.Reset()
	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false after SetLevel(LevelDebug)")
	}
	Debug("cache %s", "miss")
	if !strings.Contains(buf.String(), "[DEBUG] cache miss") {
		t.Errorf("Expected debug message in output, got %q", buf.String())
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
