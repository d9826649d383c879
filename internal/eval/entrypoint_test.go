package eval_test

import (
	"errors"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"qir/internal/eval"
)

// addEntry defines a void() function carrying the EntryPoint attribute.
func addEntry(mod *ir.Module, name string) *ir.Func {
	f := mod.NewFunc(name, types.Void)
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString("EntryPoint"))
	f.NewBlock("entry").NewRet(nil)
	return f
}

// TestSelectEntryPoint_None tests the no-candidate failure.
func TestSelectEntryPoint_None(t *testing.T) {
	mod := ir.NewModule()
	f := mod.NewFunc("plain", types.Void)
	f.NewBlock("entry").NewRet(nil)

	if _, err := eval.SelectEntryPoint(mod, ""); !errors.Is(err, eval.ErrNoEntryPoint) {
		t.Errorf("error = %v, want ErrNoEntryPoint", err)
	}
}

// TestSelectEntryPoint_Single tests the one-candidate path.
func TestSelectEntryPoint_Single(t *testing.T) {
	mod := ir.NewModule()
	want := addEntry(mod, "main")

	got, err := eval.SelectEntryPoint(mod, "")
	if err != nil {
		t.Fatalf("SelectEntryPoint: %v", err)
	}
	if got != want {
		t.Errorf("selected @%s, want @main", got.Name())
	}
}

// TestSelectEntryPoint_Multiple tests ambiguity and the name filter resolving
// it.
func TestSelectEntryPoint_Multiple(t *testing.T) {
	mod := ir.NewModule()
	addEntry(mod, "alpha")
	want := addEntry(mod, "beta")

	if _, err := eval.SelectEntryPoint(mod, ""); !errors.Is(err, eval.ErrMultipleEntryPoints) {
		t.Errorf("error = %v, want ErrMultipleEntryPoints", err)
	}

	got, err := eval.SelectEntryPoint(mod, "beta")
	if err != nil {
		t.Fatalf("SelectEntryPoint(beta): %v", err)
	}
	if got != want {
		t.Errorf("selected @%s, want @beta", got.Name())
	}

	if _, err := eval.SelectEntryPoint(mod, "gamma"); !errors.Is(err, eval.ErrNoEntryPoint) {
		t.Errorf("error = %v, want ErrNoEntryPoint for an unmatched filter", err)
	}
}

// TestSelectEntryPoint_Signature tests rejection of parameterized and
// value-returning candidates.
func TestSelectEntryPoint_Signature(t *testing.T) {
	mod := ir.NewModule()
	f := mod.NewFunc("main", types.I64)
	f.FuncAttrs = append(f.FuncAttrs, ir.AttrString("EntryPoint"))

	if _, err := eval.SelectEntryPoint(mod, ""); !errors.Is(err, eval.ErrEntrySignature) {
		t.Errorf("error = %v, want ErrEntrySignature", err)
	}

	mod2 := ir.NewModule()
	f2 := mod2.NewFunc("main", types.Void, ir.NewParam("x", types.I64))
	f2.FuncAttrs = append(f2.FuncAttrs, ir.AttrString("EntryPoint"))

	if _, err := eval.SelectEntryPoint(mod2, ""); !errors.Is(err, eval.ErrEntrySignature) {
		t.Errorf("error = %v, want ErrEntrySignature", err)
	}
}

// TestSelectEntryPoint_AttrGroup tests recognition of the grouped attribute
// form that parsed modules carry.
func TestSelectEntryPoint_AttrGroup(t *testing.T) {
	mod := ir.NewModule()
	group := &ir.AttrGroupDef{ID: 0, FuncAttrs: []ir.FuncAttribute{ir.AttrString("EntryPoint")}}
	mod.AttrGroupDefs = append(mod.AttrGroupDefs, group)
	f := mod.NewFunc("main", types.Void)
	f.FuncAttrs = append(f.FuncAttrs, group)
	f.NewBlock("entry").NewRet(nil)

	got, err := eval.SelectEntryPoint(mod, "")
	if err != nil {
		t.Fatalf("SelectEntryPoint: %v", err)
	}
	if got != f {
		t.Errorf("selected @%s, want @main", got.Name())
	}
}
