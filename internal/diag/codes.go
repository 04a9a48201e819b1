package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005
	LexNumberOverflow           Code = 1006

	// Syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnexpectedTopLevel Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynExpectExpression   Code = 2005
	SynExpectSemicolon    Code = 2006
	SynExpectColon        Code = 2007
	SynExpectAssign       Code = 2008
	SynUnclosedParen      Code = 2009
	SynUnclosedBrace      Code = 2010
	SynExpectBlock        Code = 2011
	SynBadAssignTarget    Code = 2012

	// Semantic: names
	SemaInfo             Code = 3000
	SemaUnresolvedSymbol Code = 3001
	SemaDuplicateSymbol  Code = 3002
	SemaUseBeforeDecl    Code = 3003
	SemaUnknownType      Code = 3004

	// Semantic: types and consistency
	SemaTypeMismatch     Code = 3100
	SemaInvalidOperand   Code = 3101
	SemaNotCallable      Code = 3102
	SemaArgCount         Code = 3103
	SemaAssignImmutable  Code = 3104
	SemaReturnMismatch   Code = 3105
	SemaMissingReturn    Code = 3106
	SemaLoopControl      Code = 3107
	SemaUnitBinding      Code = 3108
	SemaBadEntrypoint    Code = 3109
	SemaNotAValue        Code = 3110
	SemaConditionNotBool Code = 3111

	// Semantic: lints
	SemaUnusedBinding   Code = 3200
	SemaUnreachableCode Code = 3201

	// IO
	IOLoadFileError  Code = 4001
	IOEncodingError  Code = 4002
	IOWriteFileError Code = 4003

	// Emission
	EmitInternal Code = 5001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

// Category groups codes into the error taxonomy surfaced by the driver.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryLex
	CategorySyntax
	CategoryName
	CategoryType
	CategoryLint
	CategoryIO
	CategoryEmit
	CategoryObserv
)

func (c Category) String() string {
	switch c {
	case CategoryLex:
		return "LexError"
	case CategorySyntax:
		return "SyntaxError"
	case CategoryName:
		return "NameError"
	case CategoryType:
		return "TypeError"
	case CategoryLint:
		return "Lint"
	case CategoryIO:
		return "IOError"
	case CategoryEmit:
		return "EmitError"
	case CategoryObserv:
		return "Observability"
	default:
		return "Unknown"
	}
}

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Malformed number",
		LexBadEscape:                "Invalid escape sequence",
		LexNumberOverflow:           "Number literal out of range",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnexpectedTopLevel:       "Unexpected top-level construct",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectType:               "Expected type",
		SynExpectExpression:         "Expected expression",
		SynExpectSemicolon:          "Expected semicolon",
		SynExpectColon:              "Expected colon",
		SynExpectAssign:             "Expected '='",
		SynUnclosedParen:            "Unclosed parenthesis",
		SynUnclosedBrace:            "Unclosed brace",
		SynExpectBlock:              "Expected block",
		SynBadAssignTarget:          "Invalid assignment target",
		SemaInfo:                    "Semantic information",
		SemaUnresolvedSymbol:        "Unresolved symbol",
		SemaDuplicateSymbol:         "Duplicate symbol",
		SemaUseBeforeDecl:           "Use before declaration",
		SemaUnknownType:             "Unknown type",
		SemaTypeMismatch:            "Type mismatch",
		SemaInvalidOperand:          "Invalid operand",
		SemaNotCallable:             "Not callable",
		SemaArgCount:                "Wrong number of arguments",
		SemaAssignImmutable:         "Assignment to immutable binding",
		SemaReturnMismatch:          "Return type mismatch",
		SemaMissingReturn:           "Missing return in function",
		SemaLoopControl:             "Loop control outside loop",
		SemaUnitBinding:             "Binding of unit value",
		SemaBadEntrypoint:           "Invalid entrypoint signature",
		SemaNotAValue:               "Not a value",
		SemaConditionNotBool:        "Condition is not bool",
		SemaUnusedBinding:           "Unused binding",
		SemaUnreachableCode:         "Unreachable code",
		IOLoadFileError:             "I/O load file error",
		IOEncodingError:             "Invalid source encoding",
		IOWriteFileError:            "I/O write file error",
		EmitInternal:                "Internal emitter error",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

// Category classifies the code by its numeric range.
func (c Code) Category() Category {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return CategoryLex
	case ic >= 2000 && ic < 3000:
		return CategorySyntax
	case ic >= 3000 && ic < 3100:
		return CategoryName
	case ic >= 3100 && ic < 3200:
		return CategoryType
	case ic >= 3200 && ic < 4000:
		return CategoryLint
	case ic >= 4000 && ic < 5000:
		return CategoryIO
	case ic >= 5000 && ic < 6000:
		return CategoryEmit
	case ic >= 6000 && ic < 7000:
		return CategoryObserv
	}
	return CategoryUnknown
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
