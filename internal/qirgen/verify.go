package qirgen

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Verify checks module validity after generation or linking: unique symbol
// names, a designated entry point, terminated blocks, branch targets inside
// their function, and call sites matching their callee's signature. The
// diagnostic text of the first failures is surfaced verbatim to the caller.
func Verify(mod *ir.Module) error {
	if mod == nil {
		return errors.New("nil module")
	}
	var errs []error

	seen := make(map[string]struct{}, len(mod.Funcs))
	for _, f := range mod.Funcs {
		if _, ok := seen[f.Name()]; ok {
			errs = append(errs, fmt.Errorf("duplicate function symbol @%s", f.Name()))
		}
		seen[f.Name()] = struct{}{}
	}
	globals := make(map[string]struct{}, len(mod.Globals))
	for _, g := range mod.Globals {
		if _, ok := globals[g.Name()]; ok {
			errs = append(errs, fmt.Errorf("duplicate global symbol @%s", g.Name()))
		}
		globals[g.Name()] = struct{}{}
	}

	defined := false
	entry := false
	for _, f := range mod.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		defined = true
		if hasEntryAttr(f) {
			entry = true
		}
	}
	if defined && !entry {
		errs = append(errs, errors.New("no defined function carries the EntryPoint attribute"))
	}

	for _, f := range mod.Funcs {
		if err := verifyFunc(f); err != nil {
			errs = append(errs, fmt.Errorf("function @%s: %w", f.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// hasEntryAttr reports whether a function is marked as an entry point, either
// directly or through an attribute group of a parsed module.
func hasEntryAttr(f *ir.Func) bool {
	for _, a := range f.FuncAttrs {
		switch attr := a.(type) {
		case ir.AttrString:
			if string(attr) == "EntryPoint" {
				return true
			}
		case *ir.AttrGroupDef:
			for _, ga := range attr.FuncAttrs {
				if s, ok := ga.(ir.AttrString); ok && string(s) == "EntryPoint" {
					return true
				}
			}
		}
	}
	return false
}

func verifyFunc(f *ir.Func) error {
	var errs []error

	own := make(map[*ir.Block]struct{}, len(f.Blocks))
	for _, b := range f.Blocks {
		own[b] = struct{}{}
	}

	for _, b := range f.Blocks {
		if b.Term == nil {
			errs = append(errs, fmt.Errorf("block %%%s has no terminator", b.Name()))
			continue
		}
		switch term := b.Term.(type) {
		case *ir.TermBr:
			if target, ok := term.Target.(*ir.Block); ok {
				if _, in := own[target]; !in {
					errs = append(errs, fmt.Errorf("block %%%s branches outside its function", b.Name()))
				}
			}
		case *ir.TermCondBr:
			for _, t := range []value.Value{term.TargetTrue, term.TargetFalse} {
				target, ok := t.(*ir.Block)
				if !ok {
					continue
				}
				if _, in := own[target]; !in {
					errs = append(errs, fmt.Errorf("block %%%s branches outside its function", b.Name()))
				}
			}
			if !types.Equal(term.Cond.Type(), types.I1) {
				errs = append(errs, fmt.Errorf("block %%%s has a non-i1 branch condition", b.Name()))
			}
		case *ir.TermRet:
			// Return type agreement is checked against the signature below.
		}

		for _, in := range b.Insts {
			call, ok := in.(*ir.InstCall)
			if !ok {
				continue
			}
			callee, ok := call.Callee.(*ir.Func)
			if !ok {
				continue
			}
			if err := verifyCall(call, callee); err != nil {
				errs = append(errs, fmt.Errorf("block %%%s: %w", b.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func verifyCall(call *ir.InstCall, callee *ir.Func) error {
	if callee.Sig.Variadic {
		if len(call.Args) < len(callee.Params) {
			return fmt.Errorf("call to @%s passes %d arguments, needs at least %d",
				callee.Name(), len(call.Args), len(callee.Params))
		}
	} else if len(call.Args) != len(callee.Params) {
		return fmt.Errorf("call to @%s passes %d arguments, declaration has %d",
			callee.Name(), len(call.Args), len(callee.Params))
	}
	for i, p := range callee.Params {
		if i >= len(call.Args) {
			break
		}
		if !types.Equal(call.Args[i].Type(), p.Typ) {
			return fmt.Errorf("call to @%s argument %d is %s, declaration wants %s",
				callee.Name(), i, call.Args[i].Type(), p.Typ)
		}
	}
	return nil
}
