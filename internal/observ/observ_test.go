package observ

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTimerReportAndSummary(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	idx := tm.Begin("lex")
	clock = clock.Add(2 * time.Millisecond)
	if d := tm.End(idx, "12 tokens"); d != 2*time.Millisecond {
		t.Fatalf("lex duration = %v", d)
	}
	tm.Measure("parse", func() string {
		clock = clock.Add(3 * time.Millisecond)
		return ""
	})

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.TotalMS != 5 {
		t.Fatalf("unexpected report %+v", rep)
	}
	sum := tm.Summary()
	for _, want := range []string{"lex", "(12 tokens)", "parse", "total", "5.000 ms"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary missing %q:\n%s", want, sum)
		}
	}

	tm.End(42, "ignored")
	tm.Reset()
	if tm.Len() != 0 || len(tm.Report().Phases) != 0 {
		t.Fatalf("reset left phases behind")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":         zerolog.Disabled,
		"disabled": zerolog.Disabled,
		"error":    zerolog.ErrorLevel,
		"WARN":     zerolog.WarnLevel,
		"info":     zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", &buf, true)
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("stage", "parse").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "stage=parse") {
		t.Fatalf("unexpected log output %q", out)
	}

	buf.Reset()
	nop, err := NewLogger("disabled", &buf, true)
	if err != nil {
		t.Fatal(err)
	}
	nop.Error().Msg("x")
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", buf.String())
	}
}
