package inst

// Kind enumerates instruction kinds.
type Kind uint8

const (
	// KindH represents a Hadamard gate.
	KindH Kind = iota
	// KindS represents an S gate.
	KindS
	// KindSAdj represents the adjoint of the S gate.
	KindSAdj
	// KindT represents a T gate.
	KindT
	// KindTAdj represents the adjoint of the T gate.
	KindTAdj
	// KindX represents a Pauli-X gate.
	KindX
	// KindY represents a Pauli-Y gate.
	KindY
	// KindZ represents a Pauli-Z gate.
	KindZ
	// KindReset represents a qubit reset.
	KindReset
	// KindRx represents a rotation about the X axis.
	KindRx
	// KindRy represents a rotation about the Y axis.
	KindRy
	// KindRz represents a rotation about the Z axis.
	KindRz
	// KindCX represents a controlled-X (CNOT) gate.
	KindCX
	// KindCZ represents a controlled-Z gate.
	KindCZ
	// KindM represents a measurement in the Z basis.
	KindM
	// KindCall represents a call to a user-declared external function.
	KindCall
	// KindBinOp represents a binary integer operation.
	KindBinOp
	// KindIfBool represents a conditional on a boolean value.
	KindIfBool
	// KindIfResult represents a conditional on a measurement result.
	KindIfResult
)

// Instruction is one abstract quantum or classical instruction.
// Instructions are immutable value objects; the generator reads them only.
type Instruction struct {
	Kind Kind

	Single   SingleQubit
	Rotation Rotation
	Double   TwoQubit
	Measure  Measure
	Call     CallExt
	BinOp    BinOp
	Cond     Cond
}

// SingleQubit carries the target of a single-qubit gate or reset.
type SingleQubit struct {
	Qubit Value
}

// Rotation carries a rotation angle and its target qubit.
// Theta is either a double literal or a variable holding one.
type Rotation struct {
	Theta Value
	Qubit Value
}

// TwoQubit carries the control and target of a two-qubit gate.
type TwoQubit struct {
	Control Value
	Target  Value
}

// Measure carries the measured qubit and the result slot receiving the outcome.
type Measure struct {
	Qubit  Value
	Result Value
}

// ResultKind enumerates the return types a result-bearing external call can
// declare. The zero value is a 64-bit integer.
type ResultKind uint8

const (
	// ResultI64 declares a 64-bit integer return.
	ResultI64 ResultKind = iota
	// ResultDouble declares a double return.
	ResultDouble
)

// CallExt carries a user-declared external call.
// Result is nil when the callee returns no value; ResultType gives the
// declared return type of a result-bearing call.
type CallExt struct {
	Name       string
	Args       []Value
	Result     *Variable
	ResultType ResultKind
}

// BinKind enumerates binary integer operators.
type BinKind uint8

const (
	// BinAnd represents bitwise and.
	BinAnd BinKind = iota
	// BinOr represents bitwise or.
	BinOr
	// BinXor represents bitwise xor.
	BinXor
	// BinAdd represents integer addition.
	BinAdd
	// BinSub represents integer subtraction.
	BinSub
	// BinMul represents integer multiplication.
	BinMul
	// BinShl represents a logical shift left.
	BinShl
	// BinLShr represents a logical shift right.
	BinLShr
	// BinICmp represents an integer comparison parametrized by Predicate.
	BinICmp
)

// Predicate enumerates integer comparison orderings.
type Predicate uint8

const (
	// PredEq compares for equality.
	PredEq Predicate = iota
	// PredNe compares for inequality.
	PredNe
	// PredUgt is unsigned greater-than.
	PredUgt
	// PredUge is unsigned greater-or-equal.
	PredUge
	// PredUlt is unsigned less-than.
	PredUlt
	// PredUle is unsigned less-or-equal.
	PredUle
	// PredSgt is signed greater-than.
	PredSgt
	// PredSge is signed greater-or-equal.
	PredSge
	// PredSlt is signed less-than.
	PredSlt
	// PredSle is signed less-or-equal.
	PredSle
)

// BinOp carries a binary integer operation and its destination variable.
type BinOp struct {
	Op   BinKind
	Pred Predicate
	LHS  Value
	RHS  Value
	Dst  Variable
}

// Cond carries a conditional: a condition value and the two branch bodies.
// For KindIfResult the condition is a result reference read through the
// runtime before branching; for KindIfBool it is an i1 value.
type Cond struct {
	Cond Value
	Then []Instruction
	Else []Instruction
}

// H builds a Hadamard gate instruction.
func H(q Value) Instruction { return Instruction{Kind: KindH, Single: SingleQubit{Qubit: q}} }

// S builds an S gate instruction.
func S(q Value) Instruction { return Instruction{Kind: KindS, Single: SingleQubit{Qubit: q}} }

// SAdj builds an adjoint S gate instruction.
func SAdj(q Value) Instruction { return Instruction{Kind: KindSAdj, Single: SingleQubit{Qubit: q}} }

// T builds a T gate instruction.
func T(q Value) Instruction { return Instruction{Kind: KindT, Single: SingleQubit{Qubit: q}} }

// TAdj builds an adjoint T gate instruction.
func TAdj(q Value) Instruction { return Instruction{Kind: KindTAdj, Single: SingleQubit{Qubit: q}} }

// X builds a Pauli-X gate instruction.
func X(q Value) Instruction { return Instruction{Kind: KindX, Single: SingleQubit{Qubit: q}} }

// Y builds a Pauli-Y gate instruction.
func Y(q Value) Instruction { return Instruction{Kind: KindY, Single: SingleQubit{Qubit: q}} }

// Z builds a Pauli-Z gate instruction.
func Z(q Value) Instruction { return Instruction{Kind: KindZ, Single: SingleQubit{Qubit: q}} }

// Reset builds a reset instruction.
func Reset(q Value) Instruction {
	return Instruction{Kind: KindReset, Single: SingleQubit{Qubit: q}}
}

// Rx builds an X-axis rotation instruction.
func Rx(theta, q Value) Instruction {
	return Instruction{Kind: KindRx, Rotation: Rotation{Theta: theta, Qubit: q}}
}

// Ry builds a Y-axis rotation instruction.
func Ry(theta, q Value) Instruction {
	return Instruction{Kind: KindRy, Rotation: Rotation{Theta: theta, Qubit: q}}
}

// Rz builds a Z-axis rotation instruction.
func Rz(theta, q Value) Instruction {
	return Instruction{Kind: KindRz, Rotation: Rotation{Theta: theta, Qubit: q}}
}

// CX builds a controlled-X instruction.
func CX(control, target Value) Instruction {
	return Instruction{Kind: KindCX, Double: TwoQubit{Control: control, Target: target}}
}

// CZ builds a controlled-Z instruction.
func CZ(control, target Value) Instruction {
	return Instruction{Kind: KindCZ, Double: TwoQubit{Control: control, Target: target}}
}

// M builds a measurement instruction.
func M(q, r Value) Instruction {
	return Instruction{Kind: KindM, Measure: Measure{Qubit: q, Result: r}}
}

// Call builds a user-declared external call instruction. A result-bearing
// call declares an i64 return.
func Call(name string, args []Value, result *Variable) Instruction {
	return Instruction{Kind: KindCall, Call: CallExt{Name: name, Args: args, Result: result}}
}

// CallDouble builds a user-declared external call whose result is a double.
// The bound variable is legal wherever a double literal is, rotation angles
// included.
func CallDouble(name string, args []Value, result *Variable) Instruction {
	return Instruction{Kind: KindCall, Call: CallExt{Name: name, Args: args, Result: result, ResultType: ResultDouble}}
}

// Binary builds a binary integer operation instruction.
func Binary(op BinKind, lhs, rhs Value, dst Variable) Instruction {
	return Instruction{Kind: KindBinOp, BinOp: BinOp{Op: op, LHS: lhs, RHS: rhs, Dst: dst}}
}

// Compare builds an integer comparison instruction.
func Compare(pred Predicate, lhs, rhs Value, dst Variable) Instruction {
	return Instruction{Kind: KindBinOp, BinOp: BinOp{Op: BinICmp, Pred: pred, LHS: lhs, RHS: rhs, Dst: dst}}
}

// IfBool builds a conditional on a boolean value.
func IfBool(cond Value, then, els []Instruction) Instruction {
	return Instruction{Kind: KindIfBool, Cond: Cond{Cond: cond, Then: then, Else: els}}
}

// IfResult builds a conditional on a measurement result. The one branch runs
// when the result reads as one, the zero branch when it reads as zero.
func IfResult(cond Value, one, zero []Instruction) Instruction {
	return Instruction{Kind: KindIfResult, Cond: Cond{Cond: cond, Then: one, Else: zero}}
}
