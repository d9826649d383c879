package eval

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// The four entry-point resolution failures stay distinguishable; callers
// pattern-match on them.
var (
	// ErrNoEntryPoint reports that no function carries the entry-point
	// attribute (or none survives the name filter).
	ErrNoEntryPoint = errors.New("no matching entry point found")
	// ErrMultipleEntryPoints reports an ambiguous candidate set.
	ErrMultipleEntryPoints = errors.New("multiple matching entry points")
	// ErrEntrySignature reports a candidate with parameters or a non-void
	// return type.
	ErrEntrySignature = errors.New("entry point has parameters or non-void return type")
	// ErrUnsupportedExtern reports external references outside the
	// supported allow-list.
	ErrUnsupportedExtern = errors.New("unsupported external functions")
)

// isEntryPoint reports whether the function carries the EntryPoint marker
// attribute.
func isEntryPoint(f *ir.Func) bool {
	for _, attr := range f.FuncAttrs {
		switch a := attr.(type) {
		case ir.AttrString:
			if string(a) == "EntryPoint" {
				return true
			}
		case ir.AttrPair:
			if a.Key == "EntryPoint" {
				return true
			}
		case *ir.AttrGroupDef:
			// Modules parsed from disk carry grouped attributes.
			for _, ga := range a.FuncAttrs {
				switch g := ga.(type) {
				case ir.AttrString:
					if string(g) == "EntryPoint" {
						return true
					}
				case ir.AttrPair:
					if g.Key == "EntryPoint" {
						return true
					}
				}
			}
		}
	}
	return false
}

// SelectEntryPoint picks the single entry function of the module. The name
// filter is optional; with it, exactly one candidate must match. The selected
// function must take no parameters and return void.
func SelectEntryPoint(mod *ir.Module, name string) (*ir.Func, error) {
	var candidates []*ir.Func
	for _, f := range mod.Funcs {
		if !isEntryPoint(f) {
			continue
		}
		if name != "" && f.Name() != name {
			continue
		}
		candidates = append(candidates, f)
	}
	switch len(candidates) {
	case 0:
		return nil, ErrNoEntryPoint
	case 1:
	default:
		names := make([]string, len(candidates))
		for i, f := range candidates {
			names[i] = "@" + f.Name()
		}
		return nil, fmt.Errorf("%w: %v", ErrMultipleEntryPoints, names)
	}

	entry := candidates[0]
	if len(entry.Params) != 0 || !types.Equal(entry.Sig.RetType, types.Void) {
		return nil, fmt.Errorf("%w: @%s", ErrEntrySignature, entry.Name())
	}
	return entry, nil
}
