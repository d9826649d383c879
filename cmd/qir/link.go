package main

import (
	"fmt"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"

	"qir/internal/bitcode"
	"qir/internal/link"
	"qir/internal/observ"
)

var linkCmd = &cobra.Command{
	Use:   "link [flags] <input.ll|input.bc>...",
	Short: "Link QIR modules into one",
	Long:  "Link multiple textual IR or bitcode modules into a single verified output module.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  linkExecution,
}

func init() {
	linkCmd.Flags().StringP("output", "o", "", "output path (required)")
	linkCmd.Flags().Bool("emit-text", false, "write textual IR instead of bitcode")
	_ = linkCmd.MarkFlagRequired("output")
}

func linkExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	emitText, err := cmd.Flags().GetBool("emit-text")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if !emitText && !bitcode.Available() {
		return fmt.Errorf("bitcode output needs llvm-as on PATH; use --emit-text for textual IR")
	}

	timer := observ.NewTimer()
	ctx := cmd.Context()

	var (
		mods []*ir.Module
		text string
	)
	err = timer.Track("load", func() error {
		var err error
		mods, err = link.LoadFiles(ctx, args)
		return err
	})
	if err != nil {
		return err
	}
	err = timer.Track("link", func() error {
		merged, err := link.Link(mods)
		if err != nil {
			return err
		}
		text = merged.String()
		return nil
	})
	if err != nil {
		return err
	}

	err = timer.Track("write", func() error {
		if emitText {
			return os.WriteFile(output, []byte(text), 0o644)
		}
		bc, err := bitcode.TextToBitcode(ctx, text)
		if err != nil {
			return err
		}
		return os.WriteFile(output, bc, 0o644)
	})
	if err != nil {
		return err
	}

	if showTimings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	return nil
}
