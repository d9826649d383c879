package qirgen_test

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"

	"qir/internal/qirgen"
)

// TestFlagsMerge tests the per-flag merge policies.
func TestFlagsMerge(t *testing.T) {
	a := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 0, DynamicQubits: true}
	b := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 2, DynamicResults: true}

	got, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 2, DynamicQubits: true, DynamicResults: true}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}
}

// TestFlagsMergeMajorMismatch tests that major versions merge error-on-mismatch.
func TestFlagsMergeMajorMismatch(t *testing.T) {
	a := qirgen.Flags{QIRMajorVersion: 1}
	b := qirgen.Flags{QIRMajorVersion: 2}
	if _, err := a.Merge(b); err == nil {
		t.Fatal("Merge should reject differing major versions")
	}
}

// TestFlagsRoundTrip tests Attach followed by ReadFlags.
func TestFlagsRoundTrip(t *testing.T) {
	mod := ir.NewModule()
	want := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 3, DynamicQubits: true}
	qirgen.Attach(mod, want)

	if got := qirgen.ReadFlags(mod); got != want {
		t.Errorf("ReadFlags = %+v, want %+v", got, want)
	}

	text := mod.String()
	for _, frag := range []string{"llvm.module.flags", "qir_major_version", "dynamic_qubit_management"} {
		if !strings.Contains(text, frag) {
			t.Errorf("serialized module does not contain %q", frag)
		}
	}
}

// TestReadFlagsDefaults tests that a bare module reads as the base profile.
func TestReadFlagsDefaults(t *testing.T) {
	if got := qirgen.ReadFlags(ir.NewModule()); got != qirgen.DefaultFlags() {
		t.Errorf("ReadFlags on a bare module = %+v, want defaults", got)
	}
}

// TestAttachReplaces tests that attaching twice keeps a single flag set.
func TestAttachReplaces(t *testing.T) {
	mod := ir.NewModule()
	qirgen.Attach(mod, qirgen.DefaultFlags())
	want := qirgen.Flags{QIRMajorVersion: 1, QIRMinorVersion: 5}
	qirgen.Attach(mod, want)

	if got := qirgen.ReadFlags(mod); got != want {
		t.Errorf("ReadFlags after reattach = %+v, want %+v", got, want)
	}
}
