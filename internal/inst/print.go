package inst

import (
	"fmt"
	"io"
	"strings"
)

var binNames = map[BinKind]string{
	BinAnd:  "and",
	BinOr:   "or",
	BinXor:  "xor",
	BinAdd:  "add",
	BinSub:  "sub",
	BinMul:  "mul",
	BinShl:  "shl",
	BinLShr: "lshr",
	BinICmp: "icmp",
}

var predNames = map[Predicate]string{
	PredEq:  "eq",
	PredNe:  "ne",
	PredUgt: "ugt",
	PredUge: "uge",
	PredUlt: "ult",
	PredUle: "ule",
	PredSgt: "sgt",
	PredSge: "sge",
	PredSlt: "slt",
	PredSle: "sle",
}

func (i Instruction) String() string {
	var sb strings.Builder
	writeInstr(&sb, &i, 0)
	return strings.TrimRight(sb.String(), "\n")
}

// Dump writes a human-readable listing of the model: registers first, then
// the instruction tree with conditionals indented.
func Dump(w io.Writer, m *Model) {
	if w == nil || m == nil {
		return
	}
	fmt.Fprintf(w, "program %s\n", m.Name)
	for _, r := range m.Registers {
		switch r.Kind {
		case RegQuantum:
			fmt.Fprintf(w, "  qreg %s[%d]\n", r.Name, r.Index)
		case RegClassical:
			fmt.Fprintf(w, "  creg %s(%d)\n", r.Name, r.Size)
		}
	}
	for i := range m.Instructions {
		writeInstr(w, &m.Instructions[i], 1)
	}
}

func writeInstr(w io.Writer, in *Instruction, depth int) {
	indent := strings.Repeat("  ", depth)
	switch in.Kind {
	case KindH:
		fmt.Fprintf(w, "%sh %s\n", indent, in.Single.Qubit)
	case KindS:
		fmt.Fprintf(w, "%ss %s\n", indent, in.Single.Qubit)
	case KindSAdj:
		fmt.Fprintf(w, "%ss_adj %s\n", indent, in.Single.Qubit)
	case KindT:
		fmt.Fprintf(w, "%st %s\n", indent, in.Single.Qubit)
	case KindTAdj:
		fmt.Fprintf(w, "%st_adj %s\n", indent, in.Single.Qubit)
	case KindX:
		fmt.Fprintf(w, "%sx %s\n", indent, in.Single.Qubit)
	case KindY:
		fmt.Fprintf(w, "%sy %s\n", indent, in.Single.Qubit)
	case KindZ:
		fmt.Fprintf(w, "%sz %s\n", indent, in.Single.Qubit)
	case KindReset:
		fmt.Fprintf(w, "%sreset %s\n", indent, in.Single.Qubit)
	case KindRx:
		fmt.Fprintf(w, "%srx %s, %s\n", indent, in.Rotation.Theta, in.Rotation.Qubit)
	case KindRy:
		fmt.Fprintf(w, "%sry %s, %s\n", indent, in.Rotation.Theta, in.Rotation.Qubit)
	case KindRz:
		fmt.Fprintf(w, "%srz %s, %s\n", indent, in.Rotation.Theta, in.Rotation.Qubit)
	case KindCX:
		fmt.Fprintf(w, "%scx %s, %s\n", indent, in.Double.Control, in.Double.Target)
	case KindCZ:
		fmt.Fprintf(w, "%scz %s, %s\n", indent, in.Double.Control, in.Double.Target)
	case KindM:
		fmt.Fprintf(w, "%sm %s -> %s\n", indent, in.Measure.Qubit, in.Measure.Result)
	case KindCall:
		args := make([]string, len(in.Call.Args))
		for i, a := range in.Call.Args {
			args[i] = a.String()
		}
		dst := ""
		if in.Call.Result != nil {
			dst = fmt.Sprintf("%%v%d = ", uint64(*in.Call.Result))
		}
		fmt.Fprintf(w, "%s%scall %s(%s)\n", indent, dst, in.Call.Name, strings.Join(args, ", "))
	case KindBinOp:
		op := binNames[in.BinOp.Op]
		if in.BinOp.Op == BinICmp {
			op = "icmp " + predNames[in.BinOp.Pred]
		}
		fmt.Fprintf(w, "%s%%v%d = %s %s, %s\n", indent, uint64(in.BinOp.Dst), op, in.BinOp.LHS, in.BinOp.RHS)
	case KindIfBool, KindIfResult:
		fmt.Fprintf(w, "%sif %s {\n", indent, in.Cond.Cond)
		for i := range in.Cond.Then {
			writeInstr(w, &in.Cond.Then[i], depth+1)
		}
		if len(in.Cond.Else) > 0 {
			fmt.Fprintf(w, "%s} else {\n", indent)
			for i := range in.Cond.Else {
				writeInstr(w, &in.Cond.Else[i], depth+1)
			}
		}
		fmt.Fprintf(w, "%s}\n", indent)
	default:
		fmt.Fprintf(w, "%sunknown(kind=%d)\n", indent, in.Kind)
	}
}
