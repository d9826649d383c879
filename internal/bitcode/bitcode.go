// Package bitcode converts between textual IR and bitcode by delegating to
// the installed LLVM toolchain. The byte format is owned by LLVM; this
// package only shells out and wraps the results.
package bitcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/llir/llvm/asm"
)

// ToolError reports a missing or failing LLVM tool before any conversion is
// attempted.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v (is the LLVM toolchain installed?)", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Available reports whether both conversion tools can be found.
func Available() bool {
	_, asErr := exec.LookPath("llvm-as")
	_, disErr := exec.LookPath("llvm-dis")
	return asErr == nil && disErr == nil
}

// TextToBitcode assembles textual IR into bitcode bytes via llvm-as.
func TextToBitcode(ctx context.Context, text string) ([]byte, error) {
	return run(ctx, "llvm-as", strings.NewReader(text), "-o", "-")
}

// BitcodeToText disassembles bitcode bytes into textual IR via llvm-dis.
func BitcodeToText(ctx context.Context, bc []byte) (string, error) {
	out, err := run(ctx, "llvm-dis", bytes.NewReader(bc), "-o", "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FileToText disassembles a bitcode file into textual IR.
func FileToText(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, "llvm-dis", nil, path, "-o", "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Canonical reparses textual IR and reprints it in the serializer's canonical
// formatting, so round-tripped modules compare byte for byte.
func Canonical(text string) (string, error) {
	mod, err := asm.ParseString("ir", text)
	if err != nil {
		return "", err
	}
	return mod.String(), nil
}

// EncodeBase64 wraps bitcode bytes for string-carrying surfaces.
func EncodeBase64(bc []byte) string {
	return base64.StdEncoding.EncodeToString(bc)
}

// DecodeBase64 unwraps a base64 bitcode string.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func run(ctx context.Context, tool string, stdin io.Reader, args ...string) ([]byte, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, &ToolError{Tool: tool, Err: err}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, &ToolError{Tool: tool, Err: fmt.Errorf("%s: %w", msg, err)}
		}
		return nil, &ToolError{Tool: tool, Err: err}
	}
	return stdout.Bytes(), nil
}
