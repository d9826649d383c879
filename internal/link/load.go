package link

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"golang.org/x/sync/errgroup"

	"qir/internal/bitcode"
)

// LoadFiles parses the given .ll and .bc inputs in parallel, preserving the
// input order in the returned slice.
func LoadFiles(ctx context.Context, paths []string) ([]*ir.Module, error) {
	mods := make([]*ir.Module, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			mod, err := LoadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			mods[i] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mods, nil
}

// LoadFile parses one module. Bitcode inputs are converted to textual IR
// through the LLVM toolchain first.
func LoadFile(ctx context.Context, path string) (*ir.Module, error) {
	if strings.EqualFold(filepath.Ext(path), ".bc") {
		text, err := bitcode.FileToText(ctx, path)
		if err != nil {
			return nil, err
		}
		return asm.ParseString(path, text)
	}
	return asm.ParseFile(path)
}
