package qirgen

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"qir/internal/inst"
)

// QISBody returns the external symbol of a gate body.
func QISBody(name string) string {
	return "__quantum__qis__" + strings.ToLower(name) + "__body"
}

// QISAdj returns the external symbol of a gate adjoint.
func QISAdj(name string) string {
	return "__quantum__qis__" + strings.ToLower(name) + "__adj"
}

// RT returns the external symbol of a runtime helper.
func RT(name string) string {
	return "__quantum__rt__" + strings.ToLower(name)
}

// Decls declares external QIS and runtime functions on demand. Resolution is
// idempotent per module: repeated resolution of the same symbol returns the
// one existing declaration.
type Decls struct {
	mod    *ir.Module
	types  *Types
	byName map[string]*ir.Func
}

// NewDecls returns a resolver bound to the given module.
func NewDecls(mod *ir.Module, t *Types) *Decls {
	return &Decls{mod: mod, types: t, byName: make(map[string]*ir.Func)}
}

// Lookup returns the declaration with the given symbol, if present.
func (d *Decls) Lookup(symbol string) (*ir.Func, bool) {
	f, ok := d.byName[symbol]
	return f, ok
}

func (d *Decls) resolve(symbol string, ret types.Type, params ...*ir.Param) *ir.Func {
	if f, ok := d.byName[symbol]; ok {
		return f
	}
	f := d.mod.NewFunc(symbol, ret, params...)
	d.byName[symbol] = f
	return f
}

// SimpleGate resolves a single-qubit gate body: void(%Qubit*).
func (d *Decls) SimpleGate(name string) *ir.Func {
	return d.resolve(QISBody(name), types.Void, ir.NewParam("", d.types.QubitPtr()))
}

// AdjointGate resolves a single-qubit gate adjoint: void(%Qubit*).
func (d *Decls) AdjointGate(name string) *ir.Func {
	return d.resolve(QISAdj(name), types.Void, ir.NewParam("", d.types.QubitPtr()))
}

// ControlledGate resolves a two-qubit gate body: void(%Qubit*, %Qubit*).
func (d *Decls) ControlledGate(name string) *ir.Func {
	return d.resolve(QISBody(name), types.Void,
		ir.NewParam("", d.types.QubitPtr()), ir.NewParam("", d.types.QubitPtr()))
}

// RotationGate resolves a rotation body: void(double, %Qubit*).
func (d *Decls) RotationGate(name string) *ir.Func {
	return d.resolve(QISBody(name), types.Void,
		ir.NewParam("", types.Double), ir.NewParam("", d.types.QubitPtr()))
}

// Measure resolves the measurement body: %Result*(%Qubit*).
func (d *Decls) Measure() *ir.Func {
	return d.resolve(QISBody("m"), d.types.ResultPtr(), ir.NewParam("", d.types.QubitPtr()))
}

// ReadResult resolves the runtime helper reading a result as a boolean:
// i1(%Result*).
func (d *Decls) ReadResult() *ir.Func {
	return d.resolve(RT("read_result"), types.I1, ir.NewParam("", d.types.ResultPtr()))
}

// ResultGetZero resolves the zero-result sentinel constructor: %Result*().
func (d *Decls) ResultGetZero() *ir.Func {
	return d.resolve(RT("result_get_zero"), d.types.ResultPtr())
}

// ResultUpdateRefCount resolves the result reference-counting helper:
// void(%Result*, i32).
func (d *Decls) ResultUpdateRefCount() *ir.Func {
	return d.resolve(RT("result_update_reference_count"), types.Void,
		ir.NewParam("", d.types.ResultPtr()), ir.NewParam("", types.I32))
}

// ArrayRecordOutput resolves the array output marker: void(i64, i8*).
func (d *Decls) ArrayRecordOutput() *ir.Func {
	return d.resolve(RT("array_record_output"), types.Void,
		ir.NewParam("", types.I64), ir.NewParam("", types.NewPointer(types.I8)))
}

// ResultRecordOutput resolves the result output marker: void(%Result*, i8*).
func (d *Decls) ResultRecordOutput() *ir.Func {
	return d.resolve(RT("result_record_output"), types.Void,
		ir.NewParam("", d.types.ResultPtr()), ir.NewParam("", types.NewPointer(types.I8)))
}

// External resolves a user-declared external call. Parameter types are the
// IR types of the materialized arguments, so a variable declares whatever
// type its binding carries: i1 from a comparison, double from a
// double-returning call. The declaration must match the call site exactly:
// resolving the same name with a different signature is rejected.
func (d *Decls) External(name string, argTypes []types.Type, ret types.Type) (*ir.Func, error) {
	params := make([]*ir.Param, 0, len(argTypes))
	for _, at := range argTypes {
		params = append(params, ir.NewParam("", at))
	}
	if f, ok := d.byName[name]; ok {
		if err := matchSignature(f, ret, params); err != nil {
			return nil, fmt.Errorf("call %s: %w", name, err)
		}
		return f, nil
	}
	f := d.mod.NewFunc(name, ret, params...)
	d.byName[name] = f
	return f, nil
}

// externalRet maps a call's result tag to the declared return type. Calls
// binding no result return void.
func externalRet(c *inst.CallExt) types.Type {
	if c.Result == nil {
		return types.Void
	}
	if c.ResultType == inst.ResultDouble {
		return types.Double
	}
	return types.I64
}

func matchSignature(f *ir.Func, ret types.Type, params []*ir.Param) error {
	if len(f.Params) != len(params) {
		return fmt.Errorf("declared with %d parameters, called with %d", len(f.Params), len(params))
	}
	if !types.Equal(f.Sig.RetType, ret) {
		return fmt.Errorf("declared return type %s does not match %s", f.Sig.RetType, ret)
	}
	for i := range params {
		if !types.Equal(f.Params[i].Typ, params[i].Typ) {
			return fmt.Errorf("parameter %d declared as %s, called with %s", i, f.Params[i].Typ, params[i].Typ)
		}
	}
	return nil
}
