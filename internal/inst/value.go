package inst

import "fmt"

// ValueKind enumerates value reference kinds.
type ValueKind uint8

const (
	// ValueInt represents an integer literal with an explicit bit width.
	ValueInt ValueKind = iota
	// ValueDouble represents a double literal.
	ValueDouble
	// ValueQubit references a statically allocated qubit by 0-based id.
	ValueQubit
	// ValueResult references a measurement result slot by 0-based id.
	ValueResult
	// ValueVariable references a generation-time variable token.
	ValueVariable
)

// Variable is an opaque token naming a write-once generation variable.
// Tokens are produced by Model.NewVariable and are never reused.
type Variable uint64

// Value is a reference to an operand of an instruction.
type Value struct {
	Kind ValueKind

	Int      IntLit
	Double   float64
	Qubit    uint64
	Result   uint64
	Variable Variable
}

// IntLit is an integer literal with an explicit bit width.
type IntLit struct {
	Width uint32
	Value int64
}

// Int builds an integer literal value of the given width.
func Int(width uint32, v int64) Value {
	return Value{Kind: ValueInt, Int: IntLit{Width: width, Value: v}}
}

// Bool builds a 1-bit integer literal value.
func Bool(v bool) Value {
	n := int64(0)
	if v {
		n = 1
	}
	return Int(1, n)
}

// Double builds a double literal value.
func Double(v float64) Value {
	return Value{Kind: ValueDouble, Double: v}
}

// Qubit references the qubit with the given 0-based id.
func Qubit(id uint64) Value {
	return Value{Kind: ValueQubit, Qubit: id}
}

// Result references the result slot with the given 0-based id.
func Result(id uint64) Value {
	return Value{Kind: ValueResult, Result: id}
}

// Var references a previously allocated variable token.
func Var(v Variable) Value {
	return Value{Kind: ValueVariable, Variable: v}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("i%d %d", v.Int.Width, v.Int.Value)
	case ValueDouble:
		return fmt.Sprintf("double %g", v.Double)
	case ValueQubit:
		return fmt.Sprintf("qubit%d", v.Qubit)
	case ValueResult:
		return fmt.Sprintf("result%d", v.Result)
	case ValueVariable:
		return fmt.Sprintf("%%v%d", uint64(v.Variable))
	default:
		return fmt.Sprintf("value(kind=%d)", v.Kind)
	}
}
