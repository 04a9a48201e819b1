package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured pipeline stage.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects stage durations for a single compilation.
// It is not safe for concurrent use; parallel builds keep one Timer per file.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 6), now: time.Now}
}

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) time.Duration {
	if idx < 0 || idx >= len(t.phases) {
		return 0
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	return p.Dur
}

// Measure runs fn as a named phase.
func (t *Timer) Measure(name string, fn func() string) time.Duration {
	idx := t.Begin(name)
	return t.End(idx, fn())
}

// Len returns the number of recorded phases.
func (t *Timer) Len() int { return len(t.phases) }

// Reset drops all phases so the Timer can be reused by a new run.
func (t *Timer) Reset() { t.phases = t.phases[:0] }

// Summary renders the phases as an aligned table ending with the total.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-10s %8.3f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  (" + p.Note + ")")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-10s %8.3f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport - сериализуемое представление одной фазы.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report - все фазы и их суммарная длительность.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases in milliseconds.
func (t *Timer) Report() Report {
	report := Report{Phases: make([]PhaseReport, 0, len(t.phases))}
	var total time.Duration
	for _, phase := range t.phases {
		total += phase.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       phase.Name,
			DurationMS: millis(phase.Dur),
			Note:       phase.Note,
		})
	}
	report.TotalMS = millis(total)
	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
