// Package token defines lexical token kinds and trivia for amulet.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - Type names (int, float, bool, string, unit) are identifiers;
//     the semantic layer resolves them.
//   - Comments and whitespace are leading Trivia and never appear in
//     the main token stream.
package token
