package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llir/llvm/ir"

	"qir/internal/qirgen"
)

// supportedExterns is the allow-list of external symbols the executor binds
// to trampolines. A declared-but-undefined function outside this set fails
// setup up front instead of failing opaquely at call time.
var supportedExterns = func() map[string]struct{} {
	names := []string{
		qirgen.QISBody("h"),
		qirgen.QISBody("s"),
		qirgen.QISAdj("s"),
		qirgen.QISBody("t"),
		qirgen.QISAdj("t"),
		qirgen.QISBody("x"),
		qirgen.QISBody("y"),
		qirgen.QISBody("z"),
		qirgen.QISBody("reset"),
		qirgen.QISBody("rx"),
		qirgen.QISBody("ry"),
		qirgen.QISBody("rz"),
		qirgen.QISBody("cnot"),
		qirgen.QISBody("cz"),
		qirgen.QISBody("m"),
		qirgen.RT("read_result"),
		qirgen.RT("result_get_zero"),
		qirgen.RT("result_update_reference_count"),
		qirgen.RT("array_record_output"),
		qirgen.RT("result_record_output"),
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// Supported reports whether the executor can bind the given external symbol.
func Supported(symbol string) bool {
	_, ok := supportedExterns[symbol]
	return ok
}

// checkExterns scans every declared-but-undefined function of the module
// against the allow-list and enumerates the offenders.
func checkExterns(mod *ir.Module) error {
	var missing []string
	for _, f := range mod.Funcs {
		if len(f.Blocks) > 0 {
			continue
		}
		if !Supported(f.Name()) {
			missing = append(missing, f.Name())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrUnsupportedExtern, strings.Join(missing, ", "))
}
