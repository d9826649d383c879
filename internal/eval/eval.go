package eval

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
	"qir/internal/qirgen"
)

// Session executes QIR modules against one caller-owned processor. The
// processor is the only mutable state shared with the executed code, so a run
// is a critical section: the session resets the processor on entry, and the
// caller drains the trace before starting the next run. Sessions are not safe
// for concurrent use.
type Session struct {
	proc Processor
}

// NewSession returns a session dispatching into the given processor.
func NewSession(p Processor) *Session {
	return &Session{proc: p}
}

// Run checks the module's external references, selects the entry point, and
// executes it. The name filter is optional.
func (s *Session) Run(mod *ir.Module, entry string) error {
	if mod == nil {
		return fmt.Errorf("nil module")
	}
	if err := checkExterns(mod); err != nil {
		return err
	}
	f, err := SelectEntryPoint(mod, entry)
	if err != nil {
		return err
	}
	s.proc.Reset()
	ex := &executor{proc: s.proc, env: make(map[value.Value]rtValue)}
	return ex.run(f)
}

// Trace runs the module's entry point with a deterministic result stream and
// reconstructs the semantic model of the execution.
func Trace(mod *ir.Module, entry string, bits []bool) (*inst.Model, error) {
	name := entry
	if name == "" {
		name = "main"
	}
	p := NewTraceProcessor(name, bits)
	if err := NewSession(p).Run(mod, entry); err != nil {
		return nil, err
	}
	return BuildModel(p), nil
}

type rtKind uint8

const (
	rtInt rtKind = iota
	rtDouble
	rtQubit
	rtResult
)

// rtValue is one runtime value of the executor: an integer with its width, a
// double, or a qubit/result handle.
type rtValue struct {
	kind  rtKind
	i     int64
	width uint64
	f     float64
	id    uint64
}

type executor struct {
	proc Processor
	env  map[value.Value]rtValue
}

// run walks the basic blocks of the entry function, executing calls and
// integer instructions until the terminating return.
func (ex *executor) run(f *ir.Func) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("entry point @%s has no body", f.Name())
	}
	block := f.Blocks[0]
	for {
		for _, in := range block.Insts {
			if err := ex.exec(in); err != nil {
				return err
			}
		}
		switch term := block.Term.(type) {
		case *ir.TermRet:
			return nil
		case *ir.TermBr:
			target, ok := term.Target.(*ir.Block)
			if !ok {
				return fmt.Errorf("block %%%s: branch target is not a block", block.Name())
			}
			block = target
		case *ir.TermCondBr:
			cond, err := ex.operand(term.Cond)
			if err != nil {
				return err
			}
			next := term.TargetFalse
			if cond.i != 0 {
				next = term.TargetTrue
			}
			target, ok := next.(*ir.Block)
			if !ok {
				return fmt.Errorf("block %%%s: branch target is not a block", block.Name())
			}
			block = target
		default:
			return fmt.Errorf("block %%%s: unsupported terminator %T", block.Name(), block.Term)
		}
	}
}

func (ex *executor) exec(in ir.Instruction) error {
	switch i := in.(type) {
	case *ir.InstCall:
		return ex.call(i)
	case *ir.InstAdd:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a + b })
	case *ir.InstSub:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a - b })
	case *ir.InstMul:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a * b })
	case *ir.InstAnd:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a & b })
	case *ir.InstOr:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a | b })
	case *ir.InstXor:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 { return a ^ b })
	case *ir.InstShl:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 {
			if uint64(b) >= 64 {
				return 0
			}
			return int64(uint64(a) << uint64(b))
		})
	case *ir.InstLShr:
		return ex.binary(i, i.X, i.Y, func(a, b int64) int64 {
			if uint64(b) >= 64 {
				return 0
			}
			return int64(uint64(a) >> uint64(b))
		})
	case *ir.InstICmp:
		return ex.icmp(i)
	default:
		return fmt.Errorf("unsupported instruction %T", in)
	}
}

func (ex *executor) binary(dst value.Value, x, y value.Value, op func(a, b int64) int64) error {
	xv, err := ex.intOperand(x)
	if err != nil {
		return err
	}
	yv, err := ex.intOperand(y)
	if err != nil {
		return err
	}
	width := xv.width
	out := op(xv.i, yv.i)
	ex.env[dst] = rtValue{kind: rtInt, i: maskWidth(out, width), width: width}
	return nil
}

func (ex *executor) icmp(i *ir.InstICmp) error {
	xv, err := ex.intOperand(i.X)
	if err != nil {
		return err
	}
	yv, err := ex.intOperand(i.Y)
	if err != nil {
		return err
	}
	var out bool
	switch i.Pred {
	case enum.IPredEQ:
		out = xv.i == yv.i
	case enum.IPredNE:
		out = xv.i != yv.i
	case enum.IPredUGT:
		out = uint64(maskWidth(xv.i, xv.width)) > uint64(maskWidth(yv.i, yv.width))
	case enum.IPredUGE:
		out = uint64(maskWidth(xv.i, xv.width)) >= uint64(maskWidth(yv.i, yv.width))
	case enum.IPredULT:
		out = uint64(maskWidth(xv.i, xv.width)) < uint64(maskWidth(yv.i, yv.width))
	case enum.IPredULE:
		out = uint64(maskWidth(xv.i, xv.width)) <= uint64(maskWidth(yv.i, yv.width))
	case enum.IPredSGT:
		out = signExtend(xv) > signExtend(yv)
	case enum.IPredSGE:
		out = signExtend(xv) >= signExtend(yv)
	case enum.IPredSLT:
		out = signExtend(xv) < signExtend(yv)
	case enum.IPredSLE:
		out = signExtend(xv) <= signExtend(yv)
	default:
		return fmt.Errorf("unsupported comparison predicate %v", i.Pred)
	}
	n := int64(0)
	if out {
		n = 1
	}
	ex.env[i] = rtValue{kind: rtInt, i: n, width: 1}
	return nil
}

var singleGates = map[string]inst.Kind{
	qirgen.QISBody("h"):     inst.KindH,
	qirgen.QISBody("s"):     inst.KindS,
	qirgen.QISAdj("s"):      inst.KindSAdj,
	qirgen.QISBody("t"):     inst.KindT,
	qirgen.QISAdj("t"):      inst.KindTAdj,
	qirgen.QISBody("x"):     inst.KindX,
	qirgen.QISBody("y"):     inst.KindY,
	qirgen.QISBody("z"):     inst.KindZ,
	qirgen.QISBody("reset"): inst.KindReset,
}

var rotationGates = map[string]inst.Kind{
	qirgen.QISBody("rx"): inst.KindRx,
	qirgen.QISBody("ry"): inst.KindRy,
	qirgen.QISBody("rz"): inst.KindRz,
}

var controlledGates = map[string]inst.Kind{
	qirgen.QISBody("cnot"): inst.KindCX,
	qirgen.QISBody("cz"):   inst.KindCZ,
}

// call dispatches one external call into its trampoline.
func (ex *executor) call(c *ir.InstCall) error {
	callee, ok := c.Callee.(*ir.Func)
	if !ok {
		return fmt.Errorf("indirect calls are not supported")
	}
	if len(callee.Blocks) > 0 {
		return fmt.Errorf("call to defined function @%s is not supported", callee.Name())
	}
	name := callee.Name()

	args := make([]rtValue, len(c.Args))
	for i, a := range c.Args {
		av, err := ex.operand(a)
		if err != nil {
			return fmt.Errorf("call to @%s: %w", name, err)
		}
		args[i] = av
	}

	if kind, ok := singleGates[name]; ok {
		q, err := qubitArg(name, args, 0, 1)
		if err != nil {
			return err
		}
		ex.proc.Single(kind, q)
		return nil
	}
	if kind, ok := rotationGates[name]; ok {
		if len(args) != 2 || args[0].kind != rtDouble {
			return fmt.Errorf("call to @%s: want (double, qubit)", name)
		}
		q, err := qubitArg(name, args, 1, 2)
		if err != nil {
			return err
		}
		ex.proc.Rotation(kind, args[0].f, q)
		return nil
	}
	if kind, ok := controlledGates[name]; ok {
		control, err := qubitArg(name, args, 0, 2)
		if err != nil {
			return err
		}
		target, err := qubitArg(name, args, 1, 2)
		if err != nil {
			return err
		}
		ex.proc.Controlled(kind, control, target)
		return nil
	}

	switch name {
	case qirgen.QISBody("m"):
		q, err := qubitArg(name, args, 0, 1)
		if err != nil {
			return err
		}
		id := ex.proc.Measure(q)
		ex.env[c] = rtValue{kind: rtResult, id: id}
		return nil
	case qirgen.RT("read_result"):
		if len(args) != 1 || args[0].kind != rtResult {
			return fmt.Errorf("call to @%s: want (result)", name)
		}
		n := int64(0)
		if ex.proc.Result(args[0].id) {
			n = 1
		}
		ex.env[c] = rtValue{kind: rtInt, i: n, width: 1}
		return nil
	case qirgen.RT("result_get_zero"):
		ex.env[c] = rtValue{kind: rtResult, id: ZeroResult}
		return nil
	case qirgen.RT("result_update_reference_count"),
		qirgen.RT("array_record_output"),
		qirgen.RT("result_record_output"):
		// Bookkeeping intrinsics carry no trace semantics.
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedExtern, name)
}

func qubitArg(name string, args []rtValue, idx, want int) (uint64, error) {
	if len(args) != want || args[idx].kind != rtQubit {
		return 0, fmt.Errorf("call to @%s: argument %d must be a qubit", name, idx)
	}
	return args[idx].id, nil
}

// operand evaluates one IR operand: a literal constant, a qubit/result
// pointer constant, or a value produced earlier in the run.
func (ex *executor) operand(v value.Value) (rtValue, error) {
	switch c := v.(type) {
	case *constant.Int:
		return rtValue{kind: rtInt, i: c.X.Int64(), width: c.Typ.BitSize}, nil
	case *constant.Float:
		f, _ := c.X.Float64()
		return rtValue{kind: rtDouble, f: f}, nil
	case *constant.Null:
		return slotValue(c.Typ, 0)
	case *constant.ExprIntToPtr:
		from, ok := c.From.(*constant.Int)
		if !ok {
			return rtValue{}, fmt.Errorf("unsupported inttoptr source %T", c.From)
		}
		return slotValue(c.To, uint64(from.X.Int64()))
	default:
		if rv, ok := ex.env[v]; ok {
			return rv, nil
		}
		return rtValue{}, fmt.Errorf("unsupported operand %T", v)
	}
}

func (ex *executor) intOperand(v value.Value) (rtValue, error) {
	rv, err := ex.operand(v)
	if err != nil {
		return rtValue{}, err
	}
	if rv.kind != rtInt {
		return rtValue{}, fmt.Errorf("operand is not an integer")
	}
	return rv, nil
}

// slotValue maps a typed pointer constant to the qubit or result slot it
// stands for.
func slotValue(t types.Type, id uint64) (rtValue, error) {
	ptr, ok := t.(*types.PointerType)
	if !ok {
		return rtValue{}, fmt.Errorf("unsupported pointer constant of type %s", t)
	}
	elem, ok := ptr.ElemType.(*types.StructType)
	if !ok {
		return rtValue{}, fmt.Errorf("unsupported pointer constant of type %s", t)
	}
	switch elem.TypeName {
	case qirgen.TypeQubit:
		return rtValue{kind: rtQubit, id: id}, nil
	case qirgen.TypeResult:
		return rtValue{kind: rtResult, id: id}, nil
	default:
		return rtValue{}, fmt.Errorf("unsupported pointer constant of type %s", t)
	}
}

func maskWidth(v int64, width uint64) int64 {
	if width == 0 || width >= 64 {
		return v
	}
	return int64(uint64(v) & ((uint64(1) << width) - 1))
}

func signExtend(v rtValue) int64 {
	if v.width == 0 || v.width >= 64 {
		return v.i
	}
	shift := 64 - v.width
	return v.i << shift >> shift
}
