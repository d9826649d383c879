package inst

// RegisterKind distinguishes quantum from classical registers.
type RegisterKind uint8

const (
	// RegQuantum identifies one static qubit slot.
	RegQuantum RegisterKind = iota
	// RegClassical identifies a named bit vector of measurement slots.
	RegClassical
)

// Register declares a quantum or classical register of the program.
type Register struct {
	Kind RegisterKind `msgpack:"kind"`
	Name string       `msgpack:"name"`
	// Index is the qubit slot for quantum registers.
	Index uint64 `msgpack:"index"`
	// Size is the declared bit count for classical registers.
	Size uint64 `msgpack:"size"`
}

// QuantumRegister declares one static qubit slot.
func QuantumRegister(name string, index uint64) Register {
	return Register{Kind: RegQuantum, Name: name, Index: index}
}

// ClassicalRegister declares a named bit vector of measurement slots.
func ClassicalRegister(name string, size uint64) Register {
	return Register{Kind: RegClassical, Name: name, Size: size}
}

// Model is the semantic model of one program: its registers and its ordered
// instruction list. It is built incrementally through AddReg/AddInst and read
// only once handed to the generator.
type Model struct {
	Name         string        `msgpack:"name"`
	Registers    []Register    `msgpack:"registers"`
	Instructions []Instruction `msgpack:"-"`

	nextVar Variable
}

// NewModel returns an empty model with the given program name.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddReg appends a register declaration.
func (m *Model) AddReg(r Register) {
	m.Registers = append(m.Registers, r)
}

// AddInst appends an instruction.
func (m *Model) AddInst(i Instruction) {
	m.Instructions = append(m.Instructions, i)
}

// NewVariable allocates a fresh variable token. Tokens increase monotonically
// and are never reused.
func (m *Model) NewVariable() Variable {
	v := m.nextVar
	m.nextVar++
	return v
}

// NumQubits returns the declared qubit count, or the inferred count when no
// quantum registers were declared (one past the maximum qubit id referenced
// by any instruction).
func (m *Model) NumQubits() uint64 {
	declared := uint64(0)
	seen := false
	for _, r := range m.Registers {
		if r.Kind == RegQuantum {
			seen = true
			if r.Index+1 > declared {
				declared = r.Index + 1
			}
		}
	}
	if seen {
		return declared
	}
	return maxQubitID(m.Instructions)
}

// NumResults returns the declared result count, or the inferred count when no
// classical registers were declared.
func (m *Model) NumResults() uint64 {
	declared := uint64(0)
	seen := false
	for _, r := range m.Registers {
		if r.Kind == RegClassical {
			seen = true
			declared += r.Size
		}
	}
	if seen {
		return declared
	}
	return maxResultID(m.Instructions)
}

func maxQubitID(instrs []Instruction) uint64 {
	count := uint64(0)
	note := func(v Value) {
		if v.Kind == ValueQubit && v.Qubit+1 > count {
			count = v.Qubit + 1
		}
	}
	walkValues(instrs, note)
	return count
}

func maxResultID(instrs []Instruction) uint64 {
	count := uint64(0)
	note := func(v Value) {
		if v.Kind == ValueResult && v.Result+1 > count {
			count = v.Result + 1
		}
	}
	walkValues(instrs, note)
	return count
}

// walkValues visits every value referenced by the instruction tree, including
// the bodies of nested conditionals.
func walkValues(instrs []Instruction, fn func(Value)) {
	for i := range instrs {
		in := &instrs[i]
		switch in.Kind {
		case KindH, KindS, KindSAdj, KindT, KindTAdj, KindX, KindY, KindZ, KindReset:
			fn(in.Single.Qubit)
		case KindRx, KindRy, KindRz:
			fn(in.Rotation.Theta)
			fn(in.Rotation.Qubit)
		case KindCX, KindCZ:
			fn(in.Double.Control)
			fn(in.Double.Target)
		case KindM:
			fn(in.Measure.Qubit)
			fn(in.Measure.Result)
		case KindCall:
			for _, a := range in.Call.Args {
				fn(a)
			}
		case KindBinOp:
			fn(in.BinOp.LHS)
			fn(in.BinOp.RHS)
		case KindIfBool, KindIfResult:
			fn(in.Cond.Cond)
			walkValues(in.Cond.Then, fn)
			walkValues(in.Cond.Else, fn)
		}
	}
}
