// Package link combines multiple QIR modules into one verified module.
package link

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"qir/internal/qirgen"
)

// Link merges the given modules in order: type definitions unify by name,
// declarations deduplicate against exactly matching signatures, definitions
// are appended, and module flags merge under their declared policies. The
// merged module is verified before it is returned; any failure abandons the
// link with no usable output.
func Link(mods []*ir.Module) (*ir.Module, error) {
	if len(mods) == 0 {
		return nil, fmt.Errorf("nothing to link")
	}

	out := ir.NewModule()
	typeNames := make(map[string]struct{})
	funcs := make(map[string]*ir.Func)
	globals := make(map[string]*ir.Global)
	flags := qirgen.DefaultFlags()

	for i, mod := range mods {
		if mod == nil {
			return nil, fmt.Errorf("input %d: nil module", i)
		}
		if i == 0 {
			flags = qirgen.ReadFlags(mod)
		} else {
			merged, err := flags.Merge(qirgen.ReadFlags(mod))
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			flags = merged
		}

		for _, td := range mod.TypeDefs {
			name := typeDefName(td)
			if name == "" {
				out.TypeDefs = append(out.TypeDefs, td)
				continue
			}
			if _, ok := typeNames[name]; ok {
				continue
			}
			typeNames[name] = struct{}{}
			out.TypeDefs = append(out.TypeDefs, td)
		}

		for _, g := range mod.Globals {
			prev, ok := globals[g.Name()]
			if !ok {
				globals[g.Name()] = g
				out.Globals = append(out.Globals, g)
				continue
			}
			if err := mergeGlobal(out, prev, g); err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			if g.Init != nil {
				globals[g.Name()] = g
			}
		}

		for _, f := range mod.Funcs {
			prev, ok := funcs[f.Name()]
			if !ok {
				funcs[f.Name()] = f
				out.Funcs = append(out.Funcs, f)
				continue
			}
			if err := mergeFunc(out, prev, f); err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			if len(f.Blocks) > 0 {
				funcs[f.Name()] = f
			}
		}
	}

	qirgen.Attach(out, flags)
	if err := qirgen.Verify(out); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeFunc reconciles two same-named functions: declaration against
// declaration checks signatures, a definition replaces a declaration, and two
// definitions collide.
func mergeFunc(out *ir.Module, prev, next *ir.Func) error {
	if !signatureEqual(prev, next) {
		return fmt.Errorf("function @%s declared with conflicting signatures: %s vs %s",
			prev.Name(), prev.Sig.LLString(), next.Sig.LLString())
	}
	prevDef := len(prev.Blocks) > 0
	nextDef := len(next.Blocks) > 0
	switch {
	case prevDef && nextDef:
		return fmt.Errorf("duplicate definition of function @%s", prev.Name())
	case !prevDef && nextDef:
		for i, f := range out.Funcs {
			if f == prev {
				out.Funcs[i] = next
				break
			}
		}
	}
	return nil
}

// mergeGlobal reconciles two same-named globals the way mergeFunc does for
// functions: matching declarations collapse, an initialized global replaces a
// bare declaration, and two initialized globals collide.
func mergeGlobal(out *ir.Module, prev, next *ir.Global) error {
	if prev.ContentType.LLString() != next.ContentType.LLString() {
		return fmt.Errorf("global @%s declared with conflicting types: %s vs %s",
			prev.Name(), prev.ContentType.LLString(), next.ContentType.LLString())
	}
	prevDef := prev.Init != nil
	nextDef := next.Init != nil
	switch {
	case prevDef && nextDef:
		return fmt.Errorf("duplicate definition of global @%s", prev.Name())
	case !prevDef && nextDef:
		for i, g := range out.Globals {
			if g == prev {
				out.Globals[i] = next
				break
			}
		}
	}
	return nil
}

// signatureEqual compares by printed signature: same-named opaque types from
// different modules are structurally distinct objects but print identically.
func signatureEqual(a, b *ir.Func) bool {
	return a.Sig.LLString() == b.Sig.LLString()
}

func typeDefName(t types.Type) string {
	if st, ok := t.(*types.StructType); ok {
		return st.TypeName
	}
	return ""
}
