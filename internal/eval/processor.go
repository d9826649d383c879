// Package eval executes QIR modules against a pluggable gate processor and
// reconstructs a semantic instruction trace from the run.
package eval

import (
	"math"

	"qir/internal/inst"
)

// ZeroResult is the id of the zero-result sentinel. Reading it always yields
// false.
const ZeroResult = math.MaxUint64

// Processor is the call surface the intrinsic trampolines dispatch into. One
// processor instance backs exactly one execution at a time; Reset runs on
// session entry and exit.
type Processor interface {
	// Single handles a single-qubit gate or reset.
	Single(kind inst.Kind, qubit uint64)
	// Rotation handles a parametrized rotation.
	Rotation(kind inst.Kind, theta float64, qubit uint64)
	// Controlled handles a two-qubit controlled gate.
	Controlled(kind inst.Kind, control, target uint64)
	// Measure measures a qubit and returns the id of the produced result.
	Measure(qubit uint64) uint64
	// Result reads a result as a boolean.
	Result(id uint64) bool
	// Reset clears all accumulated state.
	Reset()
}

// TraceProcessor records the executed instructions and decides measurement
// outcomes from a deterministic result stream.
type TraceProcessor struct {
	name     string
	stream   *ResultStream
	trace    []inst.Instruction
	outcomes map[uint64]bool

	nextResult uint64
	maxQubit   uint64
	sawQubit   bool
}

// NewTraceProcessor returns a processor fed by the given result bits.
func NewTraceProcessor(name string, bits []bool) *TraceProcessor {
	p := &TraceProcessor{name: name, stream: NewResultStream(bits)}
	p.Reset()
	return p
}

// Reset clears the trace and outcome table. The result stream keeps its
// position: resetting scopes an execution, it does not replay outcomes.
func (p *TraceProcessor) Reset() {
	p.trace = nil
	p.outcomes = make(map[uint64]bool)
	p.nextResult = 0
	p.maxQubit = 0
	p.sawQubit = false
}

func (p *TraceProcessor) noteQubit(ids ...uint64) {
	for _, id := range ids {
		p.sawQubit = true
		if id > p.maxQubit {
			p.maxQubit = id
		}
	}
}

// Single implements Processor.
func (p *TraceProcessor) Single(kind inst.Kind, qubit uint64) {
	p.noteQubit(qubit)
	p.trace = append(p.trace, inst.Instruction{Kind: kind, Single: inst.SingleQubit{Qubit: inst.Qubit(qubit)}})
}

// Rotation implements Processor.
func (p *TraceProcessor) Rotation(kind inst.Kind, theta float64, qubit uint64) {
	p.noteQubit(qubit)
	p.trace = append(p.trace, inst.Instruction{
		Kind:     kind,
		Rotation: inst.Rotation{Theta: inst.Double(theta), Qubit: inst.Qubit(qubit)},
	})
}

// Controlled implements Processor.
func (p *TraceProcessor) Controlled(kind inst.Kind, control, target uint64) {
	p.noteQubit(control, target)
	p.trace = append(p.trace, inst.Instruction{
		Kind:   kind,
		Double: inst.TwoQubit{Control: inst.Qubit(control), Target: inst.Qubit(target)},
	})
}

// Measure implements Processor. Outcomes come from the result stream;
// measuring the same qubit again produces a fresh result id, so the last
// measurement wins on later reads of the same slot.
func (p *TraceProcessor) Measure(qubit uint64) uint64 {
	p.noteQubit(qubit)
	id := p.nextResult
	p.nextResult++
	p.outcomes[id] = p.stream.Pop()
	p.trace = append(p.trace, inst.M(inst.Qubit(qubit), inst.Result(id)))
	return id
}

// Result implements Processor. The zero sentinel always reads false; unknown
// ids fall back to the most recent outcome.
func (p *TraceProcessor) Result(id uint64) bool {
	if id == ZeroResult {
		return false
	}
	if o, ok := p.outcomes[id]; ok {
		return o
	}
	return p.stream.Last()
}

// Trace returns the recorded instructions in execution order.
func (p *TraceProcessor) Trace() []inst.Instruction {
	return p.trace
}

// NumQubits reports the inferred qubit count: one past the maximum observed
// id, zero when no qubit was touched.
func (p *TraceProcessor) NumQubits() uint64 {
	if !p.sawQubit {
		return 0
	}
	return p.maxQubit + 1
}

// NumResults reports how many results the run produced.
func (p *TraceProcessor) NumResults() uint64 {
	return p.nextResult
}
