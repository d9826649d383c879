package eval_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"qir/internal/eval"
	"qir/internal/inst"
	"qir/internal/qirgen"
)

func bellModel() *inst.Model {
	m := inst.NewModel("bell")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddReg(inst.QuantumRegister("q1", 1))
	m.AddReg(inst.ClassicalRegister("c", 2))
	m.AddInst(inst.H(inst.Qubit(0)))
	m.AddInst(inst.CX(inst.Qubit(0), inst.Qubit(1)))
	m.AddInst(inst.M(inst.Qubit(0), inst.Result(0)))
	m.AddInst(inst.M(inst.Qubit(1), inst.Result(1)))
	return m
}

func mustGenerate(t *testing.T, m *inst.Model) *ir.Module {
	t.Helper()
	mod, err := qirgen.Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return mod
}

func mustBits(t *testing.T, s string) []bool {
	t.Helper()
	bits, ok := eval.ParseBits(s)
	if !ok {
		t.Fatalf("invalid bit pattern %q", s)
	}
	return bits
}

// TestTraceBell tests the full round trip: generate a Bell module, execute it,
// and reconstruct the semantic model.
func TestTraceBell(t *testing.T) {
	mod := mustGenerate(t, bellModel())

	got, err := eval.Trace(mod, "", mustBits(t, "10"))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	wantRegs := []inst.Register{
		inst.QuantumRegister("qubit0", 0),
		inst.QuantumRegister("qubit1", 1),
		inst.ClassicalRegister("output", 2),
	}
	if diff := cmp.Diff(wantRegs, got.Registers); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}

	wantOps := []inst.Instruction{
		inst.H(inst.Qubit(0)),
		inst.CX(inst.Qubit(0), inst.Qubit(1)),
		inst.M(inst.Qubit(0), inst.Result(0)),
		inst.M(inst.Qubit(1), inst.Result(1)),
	}
	if diff := cmp.Diff(wantOps, got.Instructions); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

// conditionalModel measures one qubit and branches on the outcome.
func conditionalModel() *inst.Model {
	m := inst.NewModel("teleport_step")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddReg(inst.ClassicalRegister("c", 1))
	m.AddInst(inst.H(inst.Qubit(0)))
	m.AddInst(inst.M(inst.Qubit(0), inst.Result(0)))
	m.AddInst(inst.IfResult(inst.Result(0),
		[]inst.Instruction{inst.X(inst.Qubit(0))},
		[]inst.Instruction{inst.Z(inst.Qubit(0))},
	))
	return m
}

// TestTraceConditional tests that the measurement outcome steers execution
// into the matching branch.
func TestTraceConditional(t *testing.T) {
	mod := mustGenerate(t, conditionalModel())

	got, err := eval.Trace(mod, "", mustBits(t, "1"))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(got.Instructions) != 3 {
		t.Fatalf("trace has %d instructions, want 3", len(got.Instructions))
	}
	if got.Instructions[2].Kind != inst.KindX {
		t.Errorf("one branch executed kind %d, want x", got.Instructions[2].Kind)
	}

	got, err = eval.Trace(mod, "", mustBits(t, "0"))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if got.Instructions[2].Kind != inst.KindZ {
		t.Errorf("zero branch executed kind %d, want z", got.Instructions[2].Kind)
	}
}

// TestTraceUnmeasuredResult tests that a conditional on a never-measured slot
// takes the zero arm.
func TestTraceUnmeasuredResult(t *testing.T) {
	m := inst.NewModel("unmeasured")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddReg(inst.ClassicalRegister("c", 1))
	m.AddInst(inst.IfResult(inst.Result(0),
		[]inst.Instruction{inst.X(inst.Qubit(0))},
		[]inst.Instruction{inst.Y(inst.Qubit(0))},
	))
	mod := mustGenerate(t, m)

	got, err := eval.Trace(mod, "", mustBits(t, "1"))
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(got.Instructions) != 1 || got.Instructions[0].Kind != inst.KindY {
		t.Errorf("trace = %v, want the zero arm only", got.Instructions)
	}
}

// TestTraceRotation tests theta transport through generation and execution.
func TestTraceRotation(t *testing.T) {
	m := inst.NewModel("rot")
	m.AddReg(inst.QuantumRegister("q0", 0))
	m.AddInst(inst.Rz(inst.Double(0.25), inst.Qubit(0)))
	mod := mustGenerate(t, m)

	got, err := eval.Trace(mod, "", nil)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(got.Instructions) != 1 {
		t.Fatalf("trace has %d instructions, want 1", len(got.Instructions))
	}
	in := got.Instructions[0]
	if in.Kind != inst.KindRz || in.Rotation.Theta.Double != 0.25 {
		t.Errorf("trace recorded %s, want rz 0.25 on qubit0", in.String())
	}
}

// TestRunUnsupportedExtern tests that unknown external references fail setup
// and are enumerated by name.
func TestRunUnsupportedExtern(t *testing.T) {
	mod := ir.NewModule()
	addEntry(mod, "main")
	mod.NewFunc("__quantum__qis__ccx__body", types.Void)
	mod.NewFunc("vendor_hook", types.Void)

	err := eval.NewSession(eval.NewTraceProcessor("main", nil)).Run(mod, "")
	if !errors.Is(err, eval.ErrUnsupportedExtern) {
		t.Fatalf("error = %v, want ErrUnsupportedExtern", err)
	}
	for _, name := range []string{"__quantum__qis__ccx__body", "vendor_hook"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not enumerate %s", err, name)
		}
	}
}

// TestSupported tests the allow-list surface.
func TestSupported(t *testing.T) {
	if !eval.Supported(qirgen.QISBody("h")) {
		t.Error("h body should be supported")
	}
	if !eval.Supported(qirgen.RT("read_result")) {
		t.Error("read_result should be supported")
	}
	if eval.Supported(qirgen.QISBody("ccx")) {
		t.Error("ccx body should not be supported")
	}
}

// TestRunEntryErrors tests entry selection failures surfacing through Run.
func TestRunEntryErrors(t *testing.T) {
	s := eval.NewSession(eval.NewTraceProcessor("main", nil))

	if err := s.Run(nil, ""); err == nil {
		t.Error("Run(nil) should fail")
	}
	if err := s.Run(ir.NewModule(), ""); !errors.Is(err, eval.ErrNoEntryPoint) {
		t.Errorf("error = %v, want ErrNoEntryPoint", err)
	}
}

// TestTraceProcessorReset tests that Reset scopes a run without replaying the
// result stream.
func TestTraceProcessorReset(t *testing.T) {
	p := eval.NewTraceProcessor("main", mustBits(t, "10"))

	if id := p.Measure(0); id != 0 {
		t.Fatalf("first result id = %d, want 0", id)
	}
	if p.Result(0) != false {
		t.Error("first measurement should read the last supplied bit (0)")
	}

	p.Reset()
	if len(p.Trace()) != 0 || p.NumResults() != 0 {
		t.Fatal("Reset should clear the trace and outcome table")
	}
	if id := p.Measure(4); id != 0 {
		t.Fatalf("result id after Reset = %d, want 0", id)
	}
	if p.Result(0) != true {
		t.Error("the stream should not replay across Reset")
	}
	if p.NumQubits() != 5 {
		t.Errorf("NumQubits = %d, want 5", p.NumQubits())
	}
}

// TestTraceProcessorZeroSentinel tests the zero-result read.
func TestTraceProcessorZeroSentinel(t *testing.T) {
	p := eval.NewTraceProcessor("main", mustBits(t, "1"))
	p.Measure(0)
	if p.Result(eval.ZeroResult) {
		t.Error("the zero sentinel must always read false")
	}
}
