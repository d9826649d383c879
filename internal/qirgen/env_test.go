package qirgen_test

import (
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"qir/internal/inst"
	"qir/internal/qirgen"
)

// TestEnvQubits tests qubit binding and the unknown-name failure.
func TestEnvQubits(t *testing.T) {
	env := qirgen.NewEnv()
	v := constant.NewNull(types.NewPointer(types.I8))
	env.BindQubit("q0", v)

	got, err := env.LookupQubit("q0")
	if err != nil {
		t.Fatalf("LookupQubit(q0): %v", err)
	}
	if got != v {
		t.Errorf("LookupQubit(q0) returned a different value")
	}

	if _, err := env.LookupQubit("q1"); err == nil {
		t.Error("LookupQubit(q1) should fail for an unbound name")
	}
}

// TestEnvResults tests that result slots must be declared before binding and
// that unbound slots report as unmeasured.
func TestEnvResults(t *testing.T) {
	env := qirgen.NewEnv()
	v := constant.NewInt(types.I64, 1)

	if err := env.BindResultOnce("r0", v); err == nil {
		t.Fatal("BindResultOnce should fail for an undeclared slot")
	}

	env.DeclareResult("r0")
	if _, ok := env.LookupResult("r0"); ok {
		t.Error("LookupResult should report a declared but unmeasured slot as unbound")
	}

	if err := env.BindResultOnce("r0", v); err != nil {
		t.Fatalf("BindResultOnce: %v", err)
	}
	got, ok := env.LookupResult("r0")
	if !ok || got != v {
		t.Errorf("LookupResult(r0) = (%v, %v), want the bound value", got, ok)
	}
}

// TestEnvVariableWriteOnce tests that rebinding a variable token fails.
func TestEnvVariableWriteOnce(t *testing.T) {
	env := qirgen.NewEnv()
	v := constant.NewInt(types.I64, 7)

	if err := env.BindVariableOnce(inst.Variable(0), v); err != nil {
		t.Fatalf("BindVariableOnce: %v", err)
	}
	if err := env.BindVariableOnce(inst.Variable(0), v); err == nil {
		t.Error("BindVariableOnce should reject a rebind")
	}

	got, err := env.LookupVariable(inst.Variable(0))
	if err != nil {
		t.Fatalf("LookupVariable: %v", err)
	}
	if got != v {
		t.Errorf("LookupVariable returned a different value")
	}

	if _, err := env.LookupVariable(inst.Variable(9)); err == nil {
		t.Error("LookupVariable should fail for an unbound token")
	}
}
