package vm

import (
	"fmt"
	"strings"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicUseBeforeInit  PanicCode = 1001 // VM1001: use before initialization
	PanicTypeMismatch   PanicCode = 1003 // VM1003: type mismatch
	PanicStackUnderflow PanicCode = 1004 // VM1004: operand stack underflow
	PanicDivideByZero   PanicCode = 1005 // VM1005: integer division by zero
	PanicStackOverflow  PanicCode = 1006 // VM1006: call depth exceeded
	PanicStepLimit      PanicCode = 1007 // VM1007: instruction budget exhausted
	PanicFellOff        PanicCode = 1008 // VM1008: function ended without ret
	PanicCancelled      PanicCode = 1009 // VM1009: context cancelled
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	PC       int
	Line     int
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []BacktraceFrame // top to bottom
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its backtrace.
func (p *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at pc %d (asm line %d)\n", i, frame.FuncName, frame.PC, frame.Line)
		}
	}
	return sb.String()
}
