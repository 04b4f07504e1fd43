package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	WithComponent(logger, "render").Info("frame rendered", Int("index", 3), String("aspect", "square"))

	line := buf.String()
	for _, fragment := range []string{"[render]", "frame rendered", "index=3", "aspect=square"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in output %q", fragment, line)
		}
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Info("run complete", String("reason", "all variants ok"))

	if !strings.Contains(buf.String(), `reason="all variants ok"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should have been suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestArgsCarryAttrsThroughVariadicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Info("variant finished", Args(
		Bool("looping", true),
		Any("failures", 0),
	)...)

	line := buf.String()
	for _, fragment := range []string{"looping=true", "failures=0"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in output %q", fragment, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}
