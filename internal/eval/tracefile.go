package eval

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"qir/internal/inst"
)

// Trace payload schema version - increment when the format changes.
const traceSchemaVersion uint16 = 1

// TraceOp is one flattened trace entry. The executed trace is linear, so the
// nested conditional forms never appear here.
type TraceOp struct {
	Kind   inst.Kind `msgpack:"kind"`
	Qubits []uint64  `msgpack:"qubits"`
	Theta  float64   `msgpack:"theta,omitempty"`
	Result uint64    `msgpack:"result,omitempty"`
}

// TracePayload is the on-disk form of one executed trace.
type TracePayload struct {
	Schema    uint16          `msgpack:"schema"`
	Name      string          `msgpack:"name"`
	Registers []inst.Register `msgpack:"registers"`
	Ops       []TraceOp       `msgpack:"ops"`
}

// WriteTrace serializes the model of an execution to path. The write goes
// through a temp file and rename so a crash never leaves a torn payload.
func WriteTrace(path string, m *inst.Model) error {
	payload := TracePayload{
		Schema:    traceSchemaVersion,
		Name:      m.Name,
		Registers: m.Registers,
	}
	for i := range m.Instructions {
		op, err := flattenOp(&m.Instructions[i])
		if err != nil {
			return err
		}
		payload.Ops = append(payload.Ops, op)
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "trace-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp)
		if werr != nil {
			return werr
		}
		return cerr
	}
	return os.Rename(tmp, path)
}

// ReadTrace loads a trace payload and rebuilds its model.
func ReadTrace(path string) (*inst.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload TracePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Schema != traceSchemaVersion {
		return nil, fmt.Errorf("unsupported trace schema %d", payload.Schema)
	}
	m := inst.NewModel(payload.Name)
	m.Registers = payload.Registers
	for _, op := range payload.Ops {
		in, err := expandOp(op)
		if err != nil {
			return nil, err
		}
		m.AddInst(in)
	}
	return m, nil
}

func flattenOp(in *inst.Instruction) (TraceOp, error) {
	switch in.Kind {
	case inst.KindH, inst.KindS, inst.KindSAdj, inst.KindT, inst.KindTAdj,
		inst.KindX, inst.KindY, inst.KindZ, inst.KindReset:
		return TraceOp{Kind: in.Kind, Qubits: []uint64{in.Single.Qubit.Qubit}}, nil
	case inst.KindRx, inst.KindRy, inst.KindRz:
		return TraceOp{Kind: in.Kind, Qubits: []uint64{in.Rotation.Qubit.Qubit}, Theta: in.Rotation.Theta.Double}, nil
	case inst.KindCX, inst.KindCZ:
		return TraceOp{Kind: in.Kind, Qubits: []uint64{in.Double.Control.Qubit, in.Double.Target.Qubit}}, nil
	case inst.KindM:
		return TraceOp{Kind: in.Kind, Qubits: []uint64{in.Measure.Qubit.Qubit}, Result: in.Measure.Result.Result}, nil
	default:
		return TraceOp{}, fmt.Errorf("instruction kind %d cannot appear in a trace", in.Kind)
	}
}

func expandOp(op TraceOp) (inst.Instruction, error) {
	switch op.Kind {
	case inst.KindH, inst.KindS, inst.KindSAdj, inst.KindT, inst.KindTAdj,
		inst.KindX, inst.KindY, inst.KindZ, inst.KindReset:
		if len(op.Qubits) != 1 {
			return inst.Instruction{}, fmt.Errorf("malformed trace op")
		}
		return inst.Instruction{Kind: op.Kind, Single: inst.SingleQubit{Qubit: inst.Qubit(op.Qubits[0])}}, nil
	case inst.KindRx, inst.KindRy, inst.KindRz:
		if len(op.Qubits) != 1 {
			return inst.Instruction{}, fmt.Errorf("malformed trace op")
		}
		return inst.Instruction{
			Kind:     op.Kind,
			Rotation: inst.Rotation{Theta: inst.Double(op.Theta), Qubit: inst.Qubit(op.Qubits[0])},
		}, nil
	case inst.KindCX, inst.KindCZ:
		if len(op.Qubits) != 2 {
			return inst.Instruction{}, fmt.Errorf("malformed trace op")
		}
		return inst.Instruction{
			Kind:   op.Kind,
			Double: inst.TwoQubit{Control: inst.Qubit(op.Qubits[0]), Target: inst.Qubit(op.Qubits[1])},
		}, nil
	case inst.KindM:
		if len(op.Qubits) != 1 {
			return inst.Instruction{}, fmt.Errorf("malformed trace op")
		}
		return inst.M(inst.Qubit(op.Qubits[0]), inst.Result(op.Result)), nil
	default:
		return inst.Instruction{}, fmt.Errorf("unknown trace op kind %d", op.Kind)
	}
}
