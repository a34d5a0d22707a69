package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "graphkit", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "debug").WithComponent("traversal")

	log.Debug("traversal locked", Fields(FieldRequirements, "[path]", FieldStep, "0.0"))

	m := decodeLine(t, &buf)
	if m["message"] != "traversal locked" {
		t.Errorf("expected message, got %v", m["message"])
	}
	if m[FieldComponent] != "traversal" {
		t.Errorf("expected component=traversal, got %v", m[FieldComponent])
	}
	if m[FieldRequirements] != "[path]" {
		t.Errorf("expected requirements field, got %v", m[FieldRequirements])
	}
	if m["service"] != "graphkit" {
		t.Errorf("expected service=graphkit, got %v", m["service"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "warn")

	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}

	log.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, "verbose")

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered at info, got %q", buf.String())
	}
	log.Info("shown")
	if buf.Len() == 0 {
		t.Fatal("expected info to be written")
	}
}

func TestConsoleFormat_NoColor(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "", &buf)

	log.Info("loaded", Fields(FieldCount, 3))

	out := buf.String()
	if !strings.Contains(out, "[INF]") {
		t.Errorf("expected [INF] tag, got %q", out)
	}
	if !strings.Contains(out, "count:") {
		t.Errorf("expected field name formatting, got %q", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("write failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithFields(map[string]interface{}{FieldLabel: "person"}).Info("vertex added")

	m := decodeLine(t, &buf)
	if m[FieldLabel] != "person" {
		t.Errorf("expected label=person, got %v", m[FieldLabel])
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("discarded")
	if log.GetLogger().GetLevel().String() != "disabled" {
		t.Errorf("expected nop logger to be disabled, got %s", log.GetLogger().GetLevel())
	}
}

func restoreGlobal(t *testing.T) {
	prev := global.Load()
	t.Cleanup(func() { global.Store(prev) })
}

func TestGlobalLogger(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	SetGlobalLogger(newJSONLogger(&buf, "info"))
	Info("global message")
	if !strings.Contains(buf.String(), "global message") {
		t.Errorf("expected package-level Info to use the global logger, got %q", buf.String())
	}

	buf.Reset()
	WithComponent("graphson").Warn("skipped field")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != "graphson" {
		t.Errorf("expected component=graphson, got %v", m[FieldComponent])
	}
}

func TestInit_UsesServiceName(t *testing.T) {
	restoreGlobal(t)

	Init(Config{ServiceName: "graphkit", Format: "json"})
	if GetGlobalLogger().service != "graphkit" {
		t.Errorf("expected service graphkit, got %q", GetGlobalLogger().service)
	}
}

func TestGetGlobalLogger_DefaultsLazily(t *testing.T) {
	restoreGlobal(t)
	global.Store(nil)

	l := GetGlobalLogger()
	if l == nil || GetGlobalLogger() != l {
		t.Fatal("expected one lazily created global logger")
	}
}

func TestLevelTag(t *testing.T) {
	tests := []struct {
		level   string
		noColor bool
		want    string
	}{
		{"info", true, "[INF]"},
		{"warn", true, "[WRN]"},
		{"error", false, "\033[31m[ERR]\033[0m"},
		{"custom", true, "[CUSTOM]"},
	}
	for _, tc := range tests {
		if got := levelTag(tc.level, tc.noColor); got != tc.want {
			t.Errorf("levelTag(%q) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to default to true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, 2, "ignored", "odd")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("unexpected fields: %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("commit", errors.New("x"))
	if ef[FieldOperation] != "commit" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("load", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
}
