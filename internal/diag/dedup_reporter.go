package diag

import (
	"strconv"
	"strings"

	"amulet/internal/source"
)

type dedupKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	start uint32
	end   uint32
	msg   string
	notes string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary span, message and notes. Diagnostics
// that differ only in their notes (say, several unclosed braces reported at
// EOF) are all kept.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:  code,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
		notes: notesKey(notes),
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// notesKey flattens notes into a comparable string.
func notesKey(notes []Note) string {
	if len(notes) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, n := range notes {
		sb.WriteString(strconv.FormatUint(uint64(n.Span.File), 10))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatUint(uint64(n.Span.Start), 10))
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(n.Span.End), 10))
		sb.WriteByte(' ')
		sb.WriteString(n.Msg)
		sb.WriteByte(0)
	}
	return sb.String()
}
