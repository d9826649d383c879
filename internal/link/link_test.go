package link_test

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"qir/internal/inst"
	"qir/internal/link"
	"qir/internal/qirgen"
)

// gateModel builds a single-gate program under the given name.
func gateModel(name string, qubit uint64) *inst.Model {
	m := inst.NewModel(name)
	m.AddReg(inst.QuantumRegister("q0", qubit))
	m.AddInst(inst.H(inst.Qubit(qubit)))
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

// TestLinkDeduplicatesDecls tests that shared QIS declarations and opaque
// types merge into single definitions.
func TestLinkDeduplicatesDecls(t *testing.T) {
	a := mustGenerate(t, gateModel("alpha", 0))
	b := mustGenerate(t, gateModel("beta", 0))

	out, err := link.Link([]*ir.Module{a, b})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	hBody := 0
	entries := 0
	for _, f := range out.Funcs {
		if f.Name() == qirgen.QISBody("h") {
			hBody++
		}
		if len(f.Blocks) > 0 {
			entries++
		}
	}
	if hBody != 1 {
		t.Errorf("merged module declares h body %d times, want 1", hBody)
	}
	if entries != 2 {
		t.Errorf("merged module defines %d entry points, want 2", entries)
	}

	qubitDefs := 0
	for _, td := range out.TypeDefs {
		if st, ok := td.(*types.StructType); ok && st.TypeName == qirgen.TypeQubit {
			qubitDefs++
		}
	}
	if qubitDefs != 1 {
		t.Errorf("merged module defines %%Qubit %d times, want 1", qubitDefs)
	}
}

// TestLinkDefinitionReplacesDeclaration tests decl/def reconciliation.
func TestLinkDefinitionReplacesDeclaration(t *testing.T) {
	a := ir.NewModule()
	helperDecl := a.NewFunc("helper", types.Void)
	caller := a.NewFunc("caller", types.Void)
	caller.FuncAttrs = append(caller.FuncAttrs, ir.AttrString("EntryPoint"))
	b := caller.NewBlock("entry")
	b.NewCall(helperDecl)
	b.NewRet(nil)

	c := ir.NewModule()
	helperDef := c.NewFunc("helper", types.Void)
	helperDef.NewBlock("entry").NewRet(nil)

	out, err := link.Link([]*ir.Module{a, c})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	var merged *ir.Func
	count := 0
	for _, f := range out.Funcs {
		if f.Name() == "helper" {
			merged = f
			count++
		}
	}
	if count != 1 {
		t.Fatalf("merged module carries %d helper functions, want 1", count)
	}
	if len(merged.Blocks) == 0 {
		t.Error("the definition should replace the declaration")
	}
}

// TestLinkGlobals tests that same-named globals reconcile instead of piling
// up as duplicate symbols.
func TestLinkGlobals(t *testing.T) {
	a := ir.NewModule()
	a.NewGlobal("counter", types.I64)

	b := ir.NewModule()
	b.NewGlobalDef("counter", constant.NewInt(types.I64, 0))

	out, err := link.Link([]*ir.Module{a, b})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	count := 0
	for _, g := range out.Globals {
		if g.Name() == "counter" {
			count++
			if g.Init == nil {
				t.Error("the initialized global should replace the declaration")
			}
		}
	}
	if count != 1 {
		t.Errorf("merged module carries %d counter globals, want 1", count)
	}

	c := ir.NewModule()
	c.NewGlobalDef("counter", constant.NewInt(types.I64, 1))
	_, err = link.Link([]*ir.Module{b, c})
	if err == nil {
		t.Fatal("Link should reject duplicate global definitions")
	}
	if !strings.Contains(err.Error(), "duplicate definition of global @counter") {
		t.Errorf("error %q does not name the colliding global", err)
	}

	d := ir.NewModule()
	d.NewGlobal("counter", types.I8)
	if _, err := link.Link([]*ir.Module{a, d}); err == nil {
		t.Fatal("Link should reject conflicting global types")
	}
}

// TestLinkDuplicateDefinitions tests the two-definition collision.
func TestLinkDuplicateDefinitions(t *testing.T) {
	mk := func() *ir.Module {
		m := ir.NewModule()
		f := m.NewFunc("helper", types.Void)
		f.NewBlock("entry").NewRet(nil)
		return m
	}

	_, err := link.Link([]*ir.Module{mk(), mk()})
	if err == nil {
		t.Fatal("Link should reject duplicate definitions")
	}
	if !strings.Contains(err.Error(), "duplicate definition of function @helper") {
		t.Errorf("error %q does not name the colliding function", err)
	}
}

// TestLinkConflictingSignatures tests the signature mismatch failure.
func TestLinkConflictingSignatures(t *testing.T) {
	a := ir.NewModule()
	a.NewFunc("helper", types.Void)

	b := ir.NewModule()
	b.NewFunc("helper", types.I64)

	if _, err := link.Link([]*ir.Module{a, b}); err == nil {
		t.Fatal("Link should reject conflicting signatures")
	}
}

// TestLinkMergesFlags tests the flag merge policies across inputs.
func TestLinkMergesFlags(t *testing.T) {
	a := ir.NewModule()
	qirgen.Attach(a, qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 0, DynamicQubits: true})
	b := ir.NewModule()
	qirgen.Attach(b, qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 2})

	out, err := link.Link([]*ir.Module{a, b})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	got := qirgen.ReadFlags(out)
	want := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 2, DynamicQubits: true}
	if got != want {
		t.Errorf("merged flags = %+v, want %+v", got, want)
	}
}

// TestLinkMajorVersionMismatch tests that incompatible inputs refuse to link.
func TestLinkMajorVersionMismatch(t *testing.T) {
	a := ir.NewModule()
	qirgen.Attach(a, qirgen.Flags{QIRMajorVersion: 1})
	b := ir.NewModule()
	qirgen.Attach(b, qirgen.Flags{QIRMajorVersion: 2})

	if _, err := link.Link([]*ir.Module{a, b}); err == nil {
		t.Fatal("Link should reject differing major versions")
	}
}

// TestLinkEmpty tests the empty input guard.
func TestLinkEmpty(t *testing.T) {
	if _, err := link.Link(nil); err == nil {
		t.Fatal("Link(nil) should fail")
	}
	if _, err := link.Link([]*ir.Module{nil}); err == nil {
		t.Fatal("Link should reject a nil input module")
	}
}
