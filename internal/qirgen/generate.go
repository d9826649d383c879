package qirgen

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
)

// State tracks the strictly sequential build phases of one Generator. A
// generator is single use: a module cannot be reopened once finalized.
type State uint8

const (
	// StateUnopened is the initial state.
	StateUnopened State = iota
	// StateDeclaring adds the fixed external declarations.
	StateDeclaring
	// StateAllocating creates the qubit and result registers.
	StateAllocating
	// StateEmitting drives the instruction emitter over the program.
	StateEmitting
	// StateFinalizing appends output recording and the terminator.
	StateFinalizing
	// StateVerified follows a successful module validity check.
	StateVerified
	// StateEmitted follows text serialization.
	StateEmitted
)

// Generator builds one QIR module from one semantic model. Generation is
// single-threaded and non-reentrant: the insertion cursor is shared state of
// the pass.
type Generator struct {
	state State
	mod   *ir.Module
	types *Types
	decls *Decls
	env   *Env
	entry *ir.Func

	numQubits  uint64
	numResults uint64
}

// NewGenerator returns an unopened generator.
func NewGenerator() *Generator {
	return &Generator{state: StateUnopened}
}

// Module returns the generated module. It is only valid once Generate has
// succeeded.
func (g *Generator) Module() *ir.Module { return g.mod }

// StateNow reports the current build phase.
func (g *Generator) StateNow() State { return g.state }

// Generate runs the whole build: declarations, register allocation, linear
// emission, finalization, and verification. Any failure abandons the build;
// there is no partial output.
func (g *Generator) Generate(model *inst.Model) error {
	if g.state != StateUnopened {
		return fmt.Errorf("generator already used (state %d); build a new one per module", g.state)
	}
	if model == nil {
		return fmt.Errorf("nil model")
	}

	g.mod = ir.NewModule()
	g.types = NewTypes(g.mod)
	g.decls = NewDecls(g.mod, g.types)
	g.env = NewEnv()

	g.state = StateDeclaring
	g.declare()

	g.state = StateAllocating
	if err := g.allocate(model); err != nil {
		return err
	}

	g.state = StateEmitting
	em := &emitter{types: g.types, decls: g.decls, env: g.env, fn: g.entry, block: g.entry.Blocks[0]}
	for i := range model.Instructions {
		if err := em.emit(&model.Instructions[i]); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}

	g.state = StateFinalizing
	if err := g.finalize(em.block); err != nil {
		return err
	}
	g.sweepDeadDecls()
	Attach(g.mod, DefaultFlags())

	if err := Verify(g.mod); err != nil {
		return err
	}
	g.state = StateVerified
	return nil
}

// Text serializes the verified module as textual IR and moves the generator
// to its terminal state.
func (g *Generator) Text() (string, error) {
	if g.state != StateVerified && g.state != StateEmitted {
		return "", fmt.Errorf("module is not verified yet")
	}
	g.state = StateEmitted
	return g.mod.String(), nil
}

// declare resolves the declarations every base-profile module carries: the
// output markers emitted during finalization.
func (g *Generator) declare() {
	g.decls.ArrayRecordOutput()
	g.decls.ResultRecordOutput()
}

// allocate creates the entry function and binds the static qubit and result
// registers. Counts come from the declared registers, or are inferred from
// the maximum referenced id when no registers were declared.
func (g *Generator) allocate(model *inst.Model) error {
	g.numQubits = model.NumQubits()
	g.numResults = model.NumResults()

	name := entryName(model.Name)
	g.entry = g.mod.NewFunc(name, types.Void)
	g.entry.FuncAttrs = append(g.entry.FuncAttrs,
		ir.AttrString("EntryPoint"),
		ir.AttrPair{Key: "requiredQubits", Value: fmt.Sprintf("%d", g.numQubits)},
		ir.AttrPair{Key: "requiredResults", Value: fmt.Sprintf("%d", g.numResults)},
	)
	g.entry.NewBlock("entry")

	for i := uint64(0); i < g.numQubits; i++ {
		c, err := g.types.QubitConst(i)
		if err != nil {
			return err
		}
		g.env.BindQubit(qubitName(i), c)
	}
	for i := uint64(0); i < g.numResults; i++ {
		g.env.DeclareResult(resultName(i))
	}
	return nil
}

// finalize records the program output, releases measured results, and closes
// the entry block with a void return.
func (g *Generator) finalize(block *ir.Block) error {
	tag := constant.NewNull(types.NewPointer(types.I8))
	count, err := safecast.Conv[int64](g.numResults)
	if err != nil {
		return err
	}
	block.NewCall(g.decls.ArrayRecordOutput(), g.types.Int64(count), tag)

	var measured []value.Value
	for i := uint64(0); i < g.numResults; i++ {
		rv, ok := g.env.LookupResult(resultName(i))
		if !ok {
			rv = block.NewCall(g.decls.ResultGetZero())
		} else {
			measured = append(measured, rv)
		}
		block.NewCall(g.decls.ResultRecordOutput(), rv, tag)
	}
	for _, rv := range measured {
		block.NewCall(g.decls.ResultUpdateRefCount(), rv, constant.NewInt(types.I32, -1))
	}
	block.NewRet(nil)
	return nil
}

// sweepDeadDecls drops external declarations no call site references. The
// entry function and every defined function survive.
func (g *Generator) sweepDeadDecls() {
	used := make(map[string]struct{})
	for _, f := range g.mod.Funcs {
		for _, b := range f.Blocks {
			for _, in := range b.Insts {
				call, ok := in.(*ir.InstCall)
				if !ok {
					continue
				}
				if callee, ok := call.Callee.(*ir.Func); ok {
					used[callee.Name()] = struct{}{}
				}
			}
		}
	}
	kept := g.mod.Funcs[:0]
	for _, f := range g.mod.Funcs {
		if len(f.Blocks) > 0 {
			kept = append(kept, f)
			continue
		}
		if _, ok := used[f.Name()]; ok {
			kept = append(kept, f)
		} else {
			delete(g.decls.byName, f.Name())
		}
	}
	g.mod.Funcs = kept
}

// entryName sanitizes the program name into a function identifier.
func entryName(name string) string {
	if name == "" {
		return "main"
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// Generate is the package-level convenience: build and verify a module from
// the model and return it.
func Generate(model *inst.Model) (*ir.Module, error) {
	g := NewGenerator()
	if err := g.Generate(model); err != nil {
		return nil, err
	}
	return g.Module(), nil
}

// GenerateText builds a module and returns its textual IR.
func GenerateText(model *inst.Model) (string, error) {
	g := NewGenerator()
	if err := g.Generate(model); err != nil {
		return "", err
	}
	return g.Text()
}
