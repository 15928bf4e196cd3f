package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debug("hidden %d", 1)
	l.Info("hidden too")
	l.Warn("careful %s", "now")
	l.Error("broken")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/info leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "[WARN] careful now") || !strings.Contains(out, "[ERROR] broken") {
		t.Fatalf("missing warn/error lines: %s", out)
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("visible")
	if !strings.Contains(buf.String(), "[DEBUG] visible") {
		t.Fatalf("debug not logged after SetLevel: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"ERROR": LevelError, "warn": LevelWarn, "warning": LevelWarn, " debug ": LevelDebug, "info": LevelInfo, "bogus": LevelInfo, "": LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
