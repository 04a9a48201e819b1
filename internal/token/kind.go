package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid marks a run of characters that cannot start any token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	KwFn       // fn
	KwLet      // let
	KwMut      // mut
	KwConst    // const
	KwIf       // if
	KwElse     // else
	KwWhile    // while
	KwBreak    // break
	KwContinue // continue
	KwReturn   // return
	KwTrue     // true
	KwFalse    // false
	KwPub      // pub

	IntLit
	FloatLit
	StringLit

	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Bang      // !
	Assign    // =
	EqEq      // ==
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	AndAnd    // &&
	OrOr      // ||
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Comma     // ,
	Semicolon // ;
	Colon     // :
	Arrow     // ->
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	KwFn:       "KwFn",
	KwLet:      "KwLet",
	KwMut:      "KwMut",
	KwConst:    "KwConst",
	KwIf:       "KwIf",
	KwElse:     "KwElse",
	KwWhile:    "KwWhile",
	KwBreak:    "KwBreak",
	KwContinue: "KwContinue",
	KwReturn:   "KwReturn",
	KwTrue:     "KwTrue",
	KwFalse:    "KwFalse",
	KwPub:      "KwPub",
	IntLit:     "IntLit",
	FloatLit:   "FloatLit",
	StringLit:  "StringLit",
	Plus:       "Plus",
	Minus:      "Minus",
	Star:       "Star",
	Slash:      "Slash",
	Percent:    "Percent",
	Bang:       "Bang",
	Assign:     "Assign",
	EqEq:       "EqEq",
	BangEq:     "BangEq",
	Lt:         "Lt",
	LtEq:       "LtEq",
	Gt:         "Gt",
	GtEq:       "GtEq",
	AndAnd:     "AndAnd",
	OrOr:       "OrOr",
	LParen:     "LParen",
	RParen:     "RParen",
	LBrace:     "LBrace",
	RBrace:     "RBrace",
	Comma:      "Comma",
	Semicolon:  "Semicolon",
	Colon:      "Colon",
	Arrow:      "Arrow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

var kindLexemes = map[Kind]string{
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Bang: "!",
	Assign: "=", EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">",
	GtEq: ">=", AndAnd: "&&", OrOr: "||", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", Comma: ",", Semicolon: ";", Colon: ":", Arrow: "->",
}

// Describe returns the form used in "expected X" messages:
// the quoted lexeme for punctuation and keywords, a noun otherwise.
func (k Kind) Describe() string {
	if lx, ok := kindLexemes[k]; ok {
		return "'" + lx + "'"
	}
	for kw, kind := range keywords {
		if kind == k {
			return "'" + kw + "'"
		}
	}
	switch k {
	case Ident:
		return "identifier"
	case IntLit:
		return "integer literal"
	case FloatLit:
		return "float literal"
	case StringLit:
		return "string literal"
	case EOF:
		return "end of file"
	default:
		return "invalid token"
	}
}
