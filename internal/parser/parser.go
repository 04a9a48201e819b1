package parser

import (
	"slices"

	"amulet/internal/ast"
	"amulet/internal/diag"
	"amulet/internal/lexer"
	"amulet/internal/source"
	"amulet/internal/token"
)

type Options struct {
	// MaxErrors stops reporting after this many errors; 0 means unlimited.
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser — состояние парсера на один файл
type Parser struct {
	lx       lexer.Stream
	arenas   *ast.Builder
	file     ast.FileID
	src      *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile — входная точка для разбора одного файла.
// The tree is always produced; constructs that failed to parse become
// error nodes.
func ParseFile(src *source.File, lx lexer.Stream, arenas *ast.Builder, opts Options) Result {
	fileSpan := source.Span{File: src.ID, Start: 0, End: uint32(len(src.Content))} // #nosec G115 -- checked by FileSet.Add
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(fileSpan),
		src:      src,
		opts:     opts,
		lastSpan: source.Span{File: src.ID},
	}

	p.parseItems()
	return Result{
		File:   p.file,
		Errors: p.opts.CurrentErrors,
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems — основной цикл верхнего уровня: пока не EOF — parseItem.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		start := p.lx.Peek().Span
		itemID, ok := p.parseItem()
		if !ok {
			sp := p.resyncTop(start)
			itemID = p.arenas.Items.NewError(sp)
		}
		p.arenas.PushItem(p.file, itemID)
	}
}

// parseItem выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet, token.KwConst:
		return p.parseLetItem()
	case token.KwFn, token.KwPub:
		return p.parseFnItem()
	default:
		tok := p.lx.Peek()
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, tok.Span,
			"expected 'fn', 'let' or 'const' at top level, got "+describe(tok))
		return ast.NoItemID, false
	}
}

// resyncTop — восстановление после ошибки на верхнем уровне:
// прокручиваем до ';' (съедаем), до стартового токена следующего item или EOF.
// Returns the span of everything the failed item consumed.
func (p *Parser) resyncTop(start source.Span) source.Span {
	p.skipUntil(start, isTopLevelStarter)
	if p.at(token.Semicolon) {
		p.advance()
	}
	return p.spanSince(start)
}

// isTopLevelStarter — принадлежит ли токен стартерам item.
func isTopLevelStarter(k token.Kind) bool {
	switch k {
	case token.KwLet, token.KwConst, token.KwFn, token.KwPub:
		return true
	default:
		return false
	}
}

// isStmtStarter covers statement keywords plus the item starters.
func isStmtStarter(k token.Kind) bool {
	switch k {
	case token.KwIf, token.KwWhile, token.KwReturn, token.KwBreak, token.KwContinue:
		return true
	default:
		return isTopLevelStarter(k)
	}
}

// skipUntil discards tokens until ';', '}', EOF or a token accepted by stop.
// Nested '{ }' groups are skipped whole.
// When the failing construct consumed nothing, at least one token is dropped
// so the caller always makes progress.
func (p *Parser) skipUntil(start source.Span, stop func(token.Kind) bool) {
	if p.lx.Peek().Span.Start == start.Start && !p.atOr(token.EOF, token.Semicolon) {
		if p.at(token.LBrace) {
			p.skipBalanced()
		} else {
			p.advance()
		}
	}
	for {
		k := p.lx.Peek().Kind
		switch {
		case k == token.EOF || k == token.Semicolon || k == token.RBrace || stop(k):
			return
		case k == token.LBrace:
			p.skipBalanced()
		default:
			p.advance()
		}
	}
}

// spanSince covers start up to the last consumed token.
func (p *Parser) spanSince(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return source.Span{File: start.File, Start: start.Start, End: start.Start}
	}
	return source.Span{File: start.File, Start: start.Start, End: p.lastSpan.End}
}

// skipBalanced consumes a '{' ... '}' group including nested groups.
func (p *Parser) skipBalanced() {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.advance()
		switch tok.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		if depth <= 0 {
			return
		}
	}
}
