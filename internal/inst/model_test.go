package inst_test

import (
	"strings"
	"testing"

	"qir/internal/inst"
)

// TestNumQubits_Declared tests that declared quantum registers win over the
// instruction scan.
func TestNumQubits_Declared(t *testing.T) {
	m := inst.NewModel("declared")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddReg(inst.QuantumRegister("q3", 3))
	m.AddInst(inst.H(inst.Qubit(7)))

	if got := m.NumQubits(); got != 4 {
		t.Errorf("NumQubits() = %d, want 4", got)
	}
}

// TestNumQubits_Inferred tests inference from the maximum referenced qubit id,
// including ids referenced only inside nested conditionals.
func TestNumQubits_Inferred(t *testing.T) {
	m := inst.NewModel("inferred")
	m.AddInst(inst.H(inst.Qubit(0)))
	m.AddInst(inst.IfResult(inst.Result(0),
		[]inst.Instruction{
			inst.IfBool(inst.Bool(true), []inst.Instruction{inst.X(inst.Qubit(2))}, nil),
		},
		nil,
	))

	if got := m.NumQubits(); got != 3 {
		t.Errorf("NumQubits() = %d, want 3", got)
	}
}

// TestNumResults_Declared tests that classical register sizes add up.
func TestNumResults_Declared(t *testing.T) {
	m := inst.NewModel("declared")
	m.AddReg(inst.ClassicalRegister("a", 2))
	m.AddReg(inst.ClassicalRegister("b", 3))

	if got := m.NumResults(); got != 5 {
		t.Errorf("NumResults() = %d, want 5", got)
	}
}

// TestNumResults_Inferred tests inference from measurement destinations.
func TestNumResults_Inferred(t *testing.T) {
	m := inst.NewModel("inferred")
	m.AddInst(inst.M(inst.Qubit(0), inst.Result(1)))

	if got := m.NumResults(); got != 2 {
		t.Errorf("NumResults() = %d, want 2", got)
	}
}

// TestNumQubits_Empty tests that an empty model has no registers.
func TestNumQubits_Empty(t *testing.T) {
	m := inst.NewModel("empty")
	if got := m.NumQubits(); got != 0 {
		t.Errorf("NumQubits() = %d, want 0", got)
	}
	if got := m.NumResults(); got != 0 {
		t.Errorf("NumResults() = %d, want 0", got)
	}
}

// TestNewVariable tests that variable tokens increase monotonically.
func TestNewVariable(t *testing.T) {
	m := inst.NewModel("vars")
	for i := 0; i < 3; i++ {
		if got := m.NewVariable(); got != inst.Variable(i) {
			t.Fatalf("NewVariable() = %d, want %d", got, i)
		}
	}
}

// TestInstructionString tests the single-line instruction forms.
func TestInstructionString(t *testing.T) {
	cases := []struct {
		in   inst.Instruction
		want string
	}{
		{inst.H(inst.Qubit(1)), "h qubit1"},
		{inst.SAdj(inst.Qubit(0)), "s_adj qubit0"},
		{inst.Rz(inst.Double(0.5), inst.Qubit(2)), "rz double 0.5, qubit2"},
		{inst.CX(inst.Qubit(0), inst.Qubit(1)), "cx qubit0, qubit1"},
		{inst.M(inst.Qubit(1), inst.Result(0)), "m qubit1 -> result0"},
		{inst.Compare(inst.PredSlt, inst.Int(64, 1), inst.Int(64, 2), 4), "%v4 = icmp slt i64 1, i64 2"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

// TestDump tests the model listing, including conditional indentation.
func TestDump(t *testing.T) {
	m := inst.NewModel("bell")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddReg(inst.ClassicalRegister("c", 2))
	m.AddInst(inst.H(inst.Qubit(0)))
	m.AddInst(inst.M(inst.Qubit(0), inst.Result(0)))
	m.AddInst(inst.IfResult(inst.Result(0),
		[]inst.Instruction{inst.X(inst.Qubit(0))},
		[]inst.Instruction{inst.Z(inst.Qubit(0))},
	))

	var sb strings.Builder
	inst.Dump(&sb, m)
	want := strings.Join([]string{
		"program bell",
		"  qreg q0[0]",
		"  creg c(2)",
		"  h qubit0",
		"  m qubit0 -> result0",
		"  if result0 {",
		"    x qubit0",
		"  } else {",
		"    z qubit0",
		"  }",
		"",
	}, "\n")
	if got := sb.String(); got != want {
		t.Errorf("Dump() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
