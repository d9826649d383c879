package qirgen

import (
	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// Names of the opaque QIR types. They are module-level opaque structures
// reached exclusively through pointers.
const (
	TypeQubit  = "Qubit"
	TypeResult = "Result"
	TypeArray  = "Array"
	TypeTuple  = "Tuple"
	TypeString = "String"
)

// Types resolves the opaque QIR pointer types of one module and builds the
// literal constants used during emission. Opaque types are created on first
// request and memoized by name for the lifetime of the module.
type Types struct {
	mod   *ir.Module
	named map[string]*types.StructType
}

// NewTypes returns a registry bound to the given module.
func NewTypes(mod *ir.Module) *Types {
	return &Types{mod: mod, named: make(map[string]*types.StructType)}
}

// Opaque resolves the opaque struct type with the given name, declaring it in
// the module the first time the name is requested.
func (t *Types) Opaque(name string) *types.StructType {
	if st, ok := t.named[name]; ok {
		return st
	}
	st := types.NewStruct()
	st.Opaque = true
	t.mod.NewTypeDef(name, st)
	t.named[name] = st
	return st
}

// QubitPtr returns the %Qubit* pointer type.
func (t *Types) QubitPtr() *types.PointerType {
	return types.NewPointer(t.Opaque(TypeQubit))
}

// ResultPtr returns the %Result* pointer type.
func (t *Types) ResultPtr() *types.PointerType {
	return types.NewPointer(t.Opaque(TypeResult))
}

// ArrayPtr returns the %Array* pointer type.
func (t *Types) ArrayPtr() *types.PointerType {
	return types.NewPointer(t.Opaque(TypeArray))
}

// TuplePtr returns the %Tuple* pointer type.
func (t *Types) TuplePtr() *types.PointerType {
	return types.NewPointer(t.Opaque(TypeTuple))
}

// StringPtr returns the %String* pointer type.
func (t *Types) StringPtr() *types.PointerType {
	return types.NewPointer(t.Opaque(TypeString))
}

// Int builds an integer constant of the given bit width.
func (t *Types) Int(width uint32, v int64) (*constant.Int, error) {
	bits, err := safecast.Conv[uint64](width)
	if err != nil {
		return nil, err
	}
	return constant.NewInt(types.NewInt(bits), v), nil
}

// Int64 builds an i64 constant.
func (t *Types) Int64(v int64) *constant.Int {
	return constant.NewInt(types.I64, v)
}

// Double builds a double constant.
func (t *Types) Double(v float64) *constant.Float {
	return constant.NewFloat(types.Double, v)
}

// Bool builds an i1 constant.
func (t *Types) Bool(v bool) *constant.Int {
	return constant.NewBool(v)
}

// QubitConst materializes the pointer constant standing for a static qubit.
// Slot zero is the null pointer; any other slot is an inttoptr of its id.
func (t *Types) QubitConst(id uint64) (constant.Constant, error) {
	return t.slotConst(id, t.QubitPtr())
}

// ResultConst materializes the pointer constant standing for a static result
// slot.
func (t *Types) ResultConst(id uint64) (constant.Constant, error) {
	return t.slotConst(id, t.ResultPtr())
}

func (t *Types) slotConst(id uint64, ptr *types.PointerType) (constant.Constant, error) {
	if id == 0 {
		return constant.NewNull(ptr), nil
	}
	n, err := safecast.Conv[int64](id)
	if err != nil {
		return nil, err
	}
	return constant.NewIntToPtr(constant.NewInt(types.I64, n), ptr), nil
}
