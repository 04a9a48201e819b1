// Package diag defines the diagnostic model shared by every compiler stage.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error. Only errors block emission.
//   - Code: numeric identifier with a stable string ID (LEX1002, SYN2001,
//     SEM3100). The numeric range decides the Category, which the driver maps
//     onto LexError, SyntaxError, NameError and TypeError.
//   - Message: short, actionable text.
//   - Primary: the source.Span the diagnostic points at.
//   - Notes: secondary spans, e.g. the first declaration of a duplicate name.
//
// # Producers
//
// Stages never return errors for problems in the user's program. They report
// through the Reporter interface, usually a BagReporter writing into a Bag.
// ReportError/ReportWarning build a diagnostic incrementally:
//
//	diag.ReportError(r, diag.SemaDuplicateSymbol, sp, "duplicate 'x'").
//		WithNote(prev, "previous declaration here").
//		Emit()
//
// # Scope
//
// Rendering with colours and source context lives in internal/diagfmt.
// This package only offers the plain golden/short line format.
package diag
