package qirgen

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
)

var predMap = map[inst.Predicate]enum.IPred{
	inst.PredEq:  enum.IPredEQ,
	inst.PredNe:  enum.IPredNE,
	inst.PredUgt: enum.IPredUGT,
	inst.PredUge: enum.IPredUGE,
	inst.PredUlt: enum.IPredULT,
	inst.PredUle: enum.IPredULE,
	inst.PredSgt: enum.IPredSGT,
	inst.PredSge: enum.IPredSGE,
	inst.PredSlt: enum.IPredSLT,
	inst.PredSle: enum.IPredSLE,
}

// emitBinOp materializes both operands, applies the operator, and binds the
// result to the destination variable. Operands must be integer-typed IR
// values of the same width.
func (e *emitter) emitBinOp(op *inst.BinOp) error {
	lhs, err := e.materialize(op.LHS)
	if err != nil {
		return err
	}
	rhs, err := e.materialize(op.RHS)
	if err != nil {
		return err
	}
	if !isInt(lhs) || !isInt(rhs) {
		return fmt.Errorf("binary operands must be integers, got %s and %s", lhs.Type(), rhs.Type())
	}
	if !types.Equal(lhs.Type(), rhs.Type()) {
		return fmt.Errorf("binary operand width mismatch: %s vs %s", lhs.Type(), rhs.Type())
	}

	var result value.Value
	switch op.Op {
	case inst.BinAnd:
		result = e.block.NewAnd(lhs, rhs)
	case inst.BinOr:
		result = e.block.NewOr(lhs, rhs)
	case inst.BinXor:
		result = e.block.NewXor(lhs, rhs)
	case inst.BinAdd:
		result = e.block.NewAdd(lhs, rhs)
	case inst.BinSub:
		result = e.block.NewSub(lhs, rhs)
	case inst.BinMul:
		result = e.block.NewMul(lhs, rhs)
	case inst.BinShl:
		result = e.block.NewShl(lhs, rhs)
	case inst.BinLShr:
		result = e.block.NewLShr(lhs, rhs)
	case inst.BinICmp:
		pred, ok := predMap[op.Pred]
		if !ok {
			return fmt.Errorf("unknown comparison predicate %d", op.Pred)
		}
		result = e.block.NewICmp(pred, lhs, rhs)
	default:
		return fmt.Errorf("unknown binary operator %d", op.Op)
	}
	return e.env.BindVariableOnce(op.Dst, result)
}

func isInt(v value.Value) bool {
	_, ok := v.Type().(*types.IntType)
	return ok
}
