// Package qirgen lowers an instruction model into a verified QIR module.
package qirgen

import (
	"fmt"

	"github.com/llir/llvm/ir/value"

	"qir/internal/inst"
)

// Env is the symbol environment of one generation pass. It maps qubit names,
// result names, and variable tokens to the IR values currently bound to them.
// An Env lives for exactly one entry-function generation and is discarded
// afterwards.
type Env struct {
	qubits    map[string]value.Value
	results   map[string]value.Value
	resultSet map[string]struct{}
	variables map[inst.Variable]value.Value
}

// NewEnv returns an empty symbol environment.
func NewEnv() *Env {
	return &Env{
		qubits:    make(map[string]value.Value),
		results:   make(map[string]value.Value),
		resultSet: make(map[string]struct{}),
		variables: make(map[inst.Variable]value.Value),
	}
}

// BindQubit records the IR value backing a declared qubit. Allocation is
// exhaustive and ordered, so there is no overwrite check.
func (e *Env) BindQubit(name string, v value.Value) {
	e.qubits[name] = v
}

// LookupQubit resolves a qubit name. An unknown name is a contract violation
// between the frontend and the emitter and aborts generation.
func (e *Env) LookupQubit(name string) (value.Value, error) {
	v, ok := e.qubits[name]
	if !ok {
		return nil, fmt.Errorf("unknown qubit %q", name)
	}
	return v, nil
}

// DeclareResult pre-registers a result slot. Only declared slots may be bound
// by a measurement.
func (e *Env) DeclareResult(name string) {
	e.resultSet[name] = struct{}{}
}

// LookupResult resolves a result name. Unmeasured results are legal: the
// second return reports whether a measurement has bound the slot, and callers
// must substitute the zero-result sentinel when it has not.
func (e *Env) LookupResult(name string) (value.Value, bool) {
	v, ok := e.results[name]
	return v, ok
}

// BindResultOnce binds the value produced by a measurement to a result slot.
// The slot must have been declared by the allocator.
func (e *Env) BindResultOnce(name string, v value.Value) error {
	if _, ok := e.resultSet[name]; !ok {
		return fmt.Errorf("result %q was not declared before use", name)
	}
	e.results[name] = v
	return nil
}

// BindVariableOnce binds a variable token. Rebinding an existing token is a
// fatal programming error.
func (e *Env) BindVariableOnce(v inst.Variable, val value.Value) error {
	if _, ok := e.variables[v]; ok {
		return fmt.Errorf("variable %%v%d is already bound", uint64(v))
	}
	e.variables[v] = val
	return nil
}

// LookupVariable resolves a variable token bound earlier in the pass.
func (e *Env) LookupVariable(v inst.Variable) (value.Value, error) {
	val, ok := e.variables[v]
	if !ok {
		return nil, fmt.Errorf("variable %%v%d is not bound", uint64(v))
	}
	return val, nil
}
