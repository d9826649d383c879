package qirgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
)

// emitter threads the state of one emission pass: the module under
// construction, the insertion block, the symbol environment, and the entry
// function that receives the basic blocks of nested conditionals.
type emitter struct {
	types  *Types
	decls  *Decls
	env    *Env
	fn     *ir.Func
	block  *ir.Block
	labels int
}

func qubitName(id uint64) string  { return fmt.Sprintf("q%d", id) }
func resultName(id uint64) string { return fmt.Sprintf("r%d", id) }

// emit lowers one instruction into the current block. Emission is not
// idempotent: every call mutates the module and the insertion point.
func (e *emitter) emit(in *inst.Instruction) error {
	switch in.Kind {
	case inst.KindH:
		return e.emitSimple("h", in.Single.Qubit)
	case inst.KindS:
		return e.emitSimple("s", in.Single.Qubit)
	case inst.KindT:
		return e.emitSimple("t", in.Single.Qubit)
	case inst.KindX:
		return e.emitSimple("x", in.Single.Qubit)
	case inst.KindY:
		return e.emitSimple("y", in.Single.Qubit)
	case inst.KindZ:
		return e.emitSimple("z", in.Single.Qubit)
	case inst.KindReset:
		return e.emitSimple("reset", in.Single.Qubit)
	case inst.KindSAdj:
		return e.emitAdjoint("s", in.Single.Qubit)
	case inst.KindTAdj:
		return e.emitAdjoint("t", in.Single.Qubit)
	case inst.KindRx:
		return e.emitRotation("rx", &in.Rotation)
	case inst.KindRy:
		return e.emitRotation("ry", &in.Rotation)
	case inst.KindRz:
		return e.emitRotation("rz", &in.Rotation)
	case inst.KindCX:
		return e.emitControlled("cnot", &in.Double)
	case inst.KindCZ:
		return e.emitControlled("cz", &in.Double)
	case inst.KindM:
		return e.emitMeasure(&in.Measure)
	case inst.KindCall:
		return e.emitCall(&in.Call)
	case inst.KindBinOp:
		return e.emitBinOp(&in.BinOp)
	case inst.KindIfBool:
		return e.emitCond(&in.Cond, false)
	case inst.KindIfResult:
		return e.emitCond(&in.Cond, true)
	default:
		return fmt.Errorf("unknown instruction kind %d", in.Kind)
	}
}

func (e *emitter) emitSimple(name string, q inst.Value) error {
	qv, err := e.qubitValue(q)
	if err != nil {
		return err
	}
	e.block.NewCall(e.decls.SimpleGate(name), qv)
	return nil
}

func (e *emitter) emitAdjoint(name string, q inst.Value) error {
	qv, err := e.qubitValue(q)
	if err != nil {
		return err
	}
	e.block.NewCall(e.decls.AdjointGate(name), qv)
	return nil
}

func (e *emitter) emitRotation(name string, r *inst.Rotation) error {
	theta, err := e.materialize(r.Theta)
	if err != nil {
		return err
	}
	if !types.Equal(theta.Type(), types.Double) {
		return fmt.Errorf("%s: rotation angle must be a double, got %s", name, theta.Type())
	}
	qv, err := e.qubitValue(r.Qubit)
	if err != nil {
		return err
	}
	e.block.NewCall(e.decls.RotationGate(name), theta, qv)
	return nil
}

func (e *emitter) emitControlled(name string, d *inst.TwoQubit) error {
	control, err := e.qubitValue(d.Control)
	if err != nil {
		return err
	}
	target, err := e.qubitValue(d.Target)
	if err != nil {
		return err
	}
	e.block.NewCall(e.decls.ControlledGate(name), control, target)
	return nil
}

// emitMeasure calls the measurement body and binds its returned %Result* to
// the destination slot.
func (e *emitter) emitMeasure(m *inst.Measure) error {
	qv, err := e.qubitValue(m.Qubit)
	if err != nil {
		return err
	}
	if m.Result.Kind != inst.ValueResult {
		return fmt.Errorf("measurement destination must be a result reference, got %s", m.Result)
	}
	call := e.block.NewCall(e.decls.Measure(), qv)
	return e.env.BindResultOnce(resultName(m.Result.Result), call)
}

// emitCall materializes the arguments first so the declaration picks up the
// types their bindings actually carry.
func (e *emitter) emitCall(c *inst.CallExt) error {
	args := make([]value.Value, 0, len(c.Args))
	argTypes := make([]types.Type, 0, len(c.Args))
	for i, a := range c.Args {
		av, err := e.materialize(a)
		if err != nil {
			return fmt.Errorf("call %s, argument %d: %w", c.Name, i, err)
		}
		args = append(args, av)
		argTypes = append(argTypes, av.Type())
	}
	callee, err := e.decls.External(c.Name, argTypes, externalRet(c))
	if err != nil {
		return err
	}
	call := e.block.NewCall(callee, args...)
	if c.Result != nil {
		return e.env.BindVariableOnce(*c.Result, call)
	}
	return nil
}

// qubitValue resolves a value that must reference a qubit.
func (e *emitter) qubitValue(v inst.Value) (value.Value, error) {
	if v.Kind != inst.ValueQubit {
		return nil, fmt.Errorf("expected a qubit reference, got %s", v)
	}
	return e.env.LookupQubit(qubitName(v.Qubit))
}

// resultValue resolves a result reference. Slots never bound by a measurement
// read as the zero-result sentinel, so reading before measuring is legal.
func (e *emitter) resultValue(id uint64) value.Value {
	if v, ok := e.env.LookupResult(resultName(id)); ok {
		return v
	}
	return e.block.NewCall(e.decls.ResultGetZero())
}

// materialize turns a value reference into an IR value at the current
// insertion point.
func (e *emitter) materialize(v inst.Value) (value.Value, error) {
	switch v.Kind {
	case inst.ValueInt:
		return e.types.Int(v.Int.Width, v.Int.Value)
	case inst.ValueDouble:
		return e.types.Double(v.Double), nil
	case inst.ValueQubit:
		return e.env.LookupQubit(qubitName(v.Qubit))
	case inst.ValueResult:
		return e.resultValue(v.Result), nil
	case inst.ValueVariable:
		return e.env.LookupVariable(v.Variable)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}
