package qirgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
)

// LLVM module flag merge behaviors.
const (
	// FlagBehaviorError requires both linked values to be identical.
	FlagBehaviorError int64 = 1
	// FlagBehaviorMax keeps the larger of the linked values.
	FlagBehaviorMax int64 = 7
)

// Flags carries the QIR module-level metadata flags.
type Flags struct {
	QIRMajorVersion int64
	QIRMinorVersion int64
	DynamicQubits   bool
	DynamicResults  bool
}

// DefaultFlags returns the base-profile flag values.
func DefaultFlags() Flags {
	return Flags{QIRMajorVersion: 1, QIRMinorVersion: 0}
}

// Merge combines two flag sets under the standard policies: versions are
// error-on-mismatch for the major and max-wins for the minor, the dynamic
// management booleans are max-wins.
func (f Flags) Merge(other Flags) (Flags, error) {
	if f.QIRMajorVersion != other.QIRMajorVersion {
		return Flags{}, fmt.Errorf("qir_major_version mismatch: %d vs %d", f.QIRMajorVersion, other.QIRMajorVersion)
	}
	out := f
	if other.QIRMinorVersion > out.QIRMinorVersion {
		out.QIRMinorVersion = other.QIRMinorVersion
	}
	out.DynamicQubits = out.DynamicQubits || other.DynamicQubits
	out.DynamicResults = out.DynamicResults || other.DynamicResults
	return out, nil
}

// Attach renders the flags as llvm.module.flags named metadata, replacing any
// flags already attached.
func Attach(mod *ir.Module, f Flags) {
	entries := []struct {
		behavior int64
		name     string
		value    *constant.Int
	}{
		{FlagBehaviorError, "qir_major_version", constant.NewInt(types.I32, f.QIRMajorVersion)},
		{FlagBehaviorMax, "qir_minor_version", constant.NewInt(types.I32, f.QIRMinorVersion)},
		{FlagBehaviorMax, "dynamic_qubit_management", constant.NewBool(f.DynamicQubits)},
		{FlagBehaviorMax, "dynamic_result_management", constant.NewBool(f.DynamicResults)},
	}

	nodes := make([]metadata.Node, 0, len(entries))
	for _, e := range entries {
		tuple := &metadata.Tuple{
			Fields: []metadata.Field{
				constant.NewInt(types.I32, e.behavior),
				&metadata.String{Value: e.name},
				e.value,
			},
		}
		tuple.SetID(int64(len(mod.MetadataDefs)))
		mod.MetadataDefs = append(mod.MetadataDefs, tuple)
		nodes = append(nodes, tuple)
	}

	if mod.NamedMetadataDefs == nil {
		mod.NamedMetadataDefs = make(map[string]*metadata.NamedDef)
	}
	mod.NamedMetadataDefs["llvm.module.flags"] = &metadata.NamedDef{
		Name:  "llvm.module.flags",
		Nodes: nodes,
	}
}

// ReadFlags recovers the flag values from a module's metadata, returning the
// defaults when no flags are attached.
func ReadFlags(mod *ir.Module) Flags {
	out := DefaultFlags()
	def, ok := mod.NamedMetadataDefs["llvm.module.flags"]
	if !ok || def == nil {
		return out
	}
	for _, node := range def.Nodes {
		tuple, ok := node.(*metadata.Tuple)
		if !ok || len(tuple.Fields) != 3 {
			continue
		}
		name, ok := tuple.Fields[1].(*metadata.String)
		if !ok {
			continue
		}
		val, ok := tuple.Fields[2].(*constant.Int)
		if !ok {
			continue
		}
		switch name.Value {
		case "qir_major_version":
			out.QIRMajorVersion = val.X.Int64()
		case "qir_minor_version":
			out.QIRMinorVersion = val.X.Int64()
		case "dynamic_qubit_management":
			out.DynamicQubits = val.X.Int64() != 0
		case "dynamic_result_management":
			out.DynamicResults = val.X.Int64() != 0
		}
	}
	return out
}
