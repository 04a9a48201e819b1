package vm

// Op is one amulet assembly instruction.
type Op uint8

const (
	OpInvalid Op = iota
	OpConstI
	OpConstF
	OpConstS
	OpConstB
	OpUnit
	OpLoadL
	OpStoreL
	OpLoadG
	OpStoreG
	OpAddI
	OpSubI
	OpMulI
	OpDivI
	OpModI
	OpNegI
	OpAddF
	OpSubF
	OpMulF
	OpDivF
	OpNegF
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot
	OpJmp
	OpJz
	OpCall
	OpPrint
	OpPop
	OpRet
	OpRetU
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpConstI:  "const.i",
	OpConstF:  "const.f",
	OpConstS:  "const.s",
	OpConstB:  "const.b",
	OpUnit:    "unit",
	OpLoadL:   "load.l",
	OpStoreL:  "store.l",
	OpLoadG:   "load.g",
	OpStoreG:  "store.g",
	OpAddI:    "add.i",
	OpSubI:    "sub.i",
	OpMulI:    "mul.i",
	OpDivI:    "div.i",
	OpModI:    "mod.i",
	OpNegI:    "neg.i",
	OpAddF:    "add.f",
	OpSubF:    "sub.f",
	OpMulF:    "mul.f",
	OpDivF:    "div.f",
	OpNegF:    "neg.f",
	OpConcat:  "concat",
	OpEq:      "eq",
	OpNe:      "ne",
	OpLt:      "lt",
	OpLe:      "le",
	OpGt:      "gt",
	OpGe:      "ge",
	OpNot:     "not",
	OpJmp:     "jmp",
	OpJz:      "jz",
	OpCall:    "call",
	OpPrint:   "print",
	OpPop:     "pop",
	OpRet:     "ret",
	OpRetU:    "ret.u",
}

var opByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for i, name := range opNames {
		if i != int(OpInvalid) {
			m[name] = Op(i) // #nosec G115 -- table is tiny
		}
	}
	return m
}()

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "invalid"
}

// LookupOp maps a mnemonic to its opcode.
func LookupOp(name string) (Op, bool) {
	op, ok := opByName[name]
	return op, ok
}

// operand describes what follows the mnemonic.
type operand uint8

const (
	operandNone operand = iota
	operandInt
	operandFloat
	operandString
	operandBool
	operandSlot
	operandGlobal
	operandLabel
	operandCall
)

func (op Op) operand() operand {
	switch op {
	case OpConstI:
		return operandInt
	case OpConstF:
		return operandFloat
	case OpConstS:
		return operandString
	case OpConstB:
		return operandBool
	case OpLoadL, OpStoreL:
		return operandSlot
	case OpLoadG, OpStoreG:
		return operandGlobal
	case OpJmp, OpJz:
		return operandLabel
	case OpCall:
		return operandCall
	}
	return operandNone
}
