package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Info("ready", "task", "abc")
	if !strings.Contains(buf.String(), "ready") || !strings.Contains(buf.String(), "task=abc") {
		t.Errorf("expected info line on the configured writer, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  []string
		skip  []string
	}{
		{"quiet", LevelQuiet, []string{"warn msg", "error msg"}, []string{"info msg", "debug msg", "trace msg"}},
		{"info", LevelInfo, []string{"info msg", "warn msg"}, []string{"debug msg", "trace msg"}},
		{"debug", LevelDebug, []string{"info msg", "debug msg"}, []string{"trace msg"}},
		{"trace", LevelTrace, []string{"info msg", "debug msg", "trace msg"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Initialize(tt.level, &buf)

			Info("info msg", "task", "abc")
			Debug("debug msg")
			Trace("trace msg")
			Warn("warn msg")
			Error("error msg")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in output, got %q", w, out)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("did not expect %q in output, got %q", s, out)
				}
			}
		})
	}
}

func TestIsDebug(t *testing.T) {
	var buf bytes.Buffer

	Initialize(LevelInfo, &buf)
	if IsDebug() {
		t.Error("expected IsDebug() to be false at info level")
	}

	Initialize(LevelDebug, &buf)
	if !IsDebug() {
		t.Error("expected IsDebug() to be true at debug level")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Fetching %s", "https://example.com")
	ProgressDone()

	if !strings.Contains(buf.String(), "Fetching https://example.com done") {
		t.Errorf("unexpected progress output %q", buf.String())
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelDebug, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("completion", "n", n)
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "completion"); got != 8 {
		t.Errorf("expected 8 log lines, got %d", got)
	}
}
