package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oggyb/swipematch/internal/config"
)

// captureOutput points the global logger at a buffer while f runs.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	f()
	return buf.String()
}

func testConfig(level, format, component string, source bool) *config.Config {
	c := &config.Config{}
	c.Log.Level = level
	c.Log.Format = format
	c.Log.Component = component
	c.Log.Source = source
	return c
}

func TestLogger_TextFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(testConfig("debug", "text", "test", false))
		Info("hello swipematch", "key", "value")
	})

	if !strings.Contains(out, "hello swipematch") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(testConfig("info", "JSON", "json_test", false))
		Info("json log", "foo", "bar")
	})

	if !strings.Contains(out, `"msg":"json log"`) {
		t.Errorf("expected JSON message, got: %s", out)
	}
	if !strings.Contains(out, `"component":"json_test"`) {
		t.Errorf("expected component in JSON, got: %s", out)
	}
	if !strings.Contains(out, `"foo":"bar"`) {
		t.Errorf("expected structured field in JSON, got: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(testConfig("error", "text", "", false))
		Info("should not appear")
		Error("should appear")
	})

	if strings.Contains(out, "should not appear") {
		t.Errorf("info log should not appear, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("error log should appear, got: %s", out)
	}
}

func TestLogger_WithAddsFields(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(testConfig("debug", "text", "", false))
		With("req_id", "123").Info("processing request")
	})

	if !strings.Contains(out, "req_id=123") {
		t.Errorf("expected req_id field, got: %s", out)
	}
}

func TestLogger_Context(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(testConfig("info", "text", "", false))
		ctx := NewContext(context.Background(), With("req_id", "abc"))
		FromContext(ctx, nil).Info("scoped")
		FromContext(context.Background(), nil).Info("global")
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got: %q", out)
	}
	if !strings.Contains(lines[0], "req_id=abc") {
		t.Errorf("expected req_id on scoped line, got: %s", lines[0])
	}
	if strings.Contains(lines[1], "req_id") {
		t.Errorf("global line should carry no req_id, got: %s", lines[1])
	}
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := Nop()
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}
}
