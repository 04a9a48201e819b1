package ast

import (
	"amulet/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtExpr
	StmtAssign
	StmtReturn
	StmtIf
	StmtWhile
	StmtBreak
	StmtContinue
	// StmtError covers tokens skipped during recovery.
	StmtError
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "Block"
	case StmtLet:
		return "Let"
	case StmtExpr:
		return "Expr"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtError:
		return "Error"
	}
	return "Stmt(?)"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

type ExprStmt struct {
	Expr ExprID
}

type AssignStmt struct {
	Target ExprID
	Value  ExprID
}

type ReturnStmt struct {
	Expr ExprID // NoExprID for bare return
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID, StmtBlock or StmtIf
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Lets    *Arena[LetItem]
	Exprs   *Arena[ExprStmt]
	Assigns *Arena[AssignStmt]
	Returns *Arena[ReturnStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint),
		Lets:    NewArena[LetItem](capHint),
		Exprs:   NewArena[ExprStmt](capHint),
		Assigns: NewArena[AssignStmt](capHint),
		Returns: NewArena[ReturnStmt](capHint),
		Ifs:     NewArena[IfStmt](capHint),
		Whiles:  NewArena[WhileStmt](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(BlockStmt{Stmts: append([]StmtID(nil), stmts...)})
	return s.new(StmtBlock, span, PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewLet(let LetItem) StmtID {
	payload := s.Lets.Allocate(let)
	return s.new(StmtLet, let.Span, PayloadID(payload))
}

func (s *Stmts) Let(id StmtID) (*LetItem, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	payload := s.Exprs.Allocate(ExprStmt{Expr: expr})
	return s.new(StmtExpr, span, PayloadID(payload))
}

func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	payload := s.Assigns.Allocate(AssignStmt{Target: target, Value: value})
	return s.new(StmtAssign, span, PayloadID(payload))
}

func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtAssign {
		return nil, false
	}
	return s.Assigns.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, expr ExprID) StmtID {
	payload := s.Returns.Allocate(ReturnStmt{Expr: expr})
	return s.new(StmtReturn, span, PayloadID(payload))
}

func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	payload := s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els})
	return s.new(StmtIf, span, PayloadID(payload))
}

func (s *Stmts) If(id StmtID) (*IfStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	payload := s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body})
	return s.new(StmtWhile, span, PayloadID(payload))
}

func (s *Stmts) While(id StmtID) (*WhileStmt, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(stmt.Payload)), true
}

// NewSimple allocates payload-less statements: break, continue, error.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, NoPayloadID)
}
