package eval

import (
	"fmt"

	"qir/internal/inst"
)

// BuildModel reconstructs the semantic model of one execution: the recorded
// trace plus registers inferred from the observed ids: one quantum register
// per qubit and a single classical register sized to the produced results.
func BuildModel(p *TraceProcessor) *inst.Model {
	m := inst.NewModel(p.name)
	for i := uint64(0); i < p.NumQubits(); i++ {
		m.AddReg(inst.QuantumRegister(fmt.Sprintf("qubit%d", i), i))
	}
	if n := p.NumResults(); n > 0 {
		m.AddReg(inst.ClassicalRegister("output", n))
	}
	for _, in := range p.Trace() {
		m.AddInst(in)
	}
	return m
}
