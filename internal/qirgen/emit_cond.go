package qirgen

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
)

// emitCond expands a conditional into three fresh basic blocks appended to
// the enclosing entry function and recurses into the branch bodies. Nested
// conditionals recurse through this function; depth equals the nesting depth
// of the source tree.
func (e *emitter) emitCond(c *inst.Cond, onResult bool) error {
	var cond value.Value
	if onResult {
		if c.Cond.Kind != inst.ValueResult {
			return fmt.Errorf("result conditional requires a result reference, got %s", c.Cond)
		}
		// A result is opaque until read through the runtime. Unmeasured
		// slots read as zero, branching to the zero arm.
		rv := e.resultValue(c.Cond.Result)
		cond = e.block.NewCall(e.decls.ReadResult(), rv)
	} else {
		cv, err := e.materialize(c.Cond)
		if err != nil {
			return err
		}
		if !types.Equal(cv.Type(), types.I1) {
			return fmt.Errorf("boolean conditional requires an i1 condition, got %s", cv.Type())
		}
		cond = cv
	}

	// Labels are cosmetic, but no two blocks of one function may collide.
	n := e.labels
	e.labels++
	thenBlock := e.fn.NewBlock(fmt.Sprintf("then%d", n))
	elseBlock := e.fn.NewBlock(fmt.Sprintf("else%d", n))
	contBlock := e.fn.NewBlock(fmt.Sprintf("continue%d", n))

	e.block.NewCondBr(cond, thenBlock, elseBlock)

	e.block = thenBlock
	for i := range c.Then {
		if err := e.emit(&c.Then[i]); err != nil {
			return err
		}
	}
	e.block.NewBr(contBlock)

	e.block = elseBlock
	for i := range c.Else {
		if err := e.emit(&c.Else[i]); err != nil {
			return err
		}
	}
	e.block.NewBr(contBlock)

	// Later top-level instructions continue linearly after the join.
	e.block = contBlock
	return nil
}
