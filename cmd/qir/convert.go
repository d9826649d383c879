package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"qir/internal/bitcode"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input.ll|input.bc>",
	Short: "Convert between textual IR and bitcode",
	Long:  "Convert a module between textual IR and bitcode. The direction follows the input extension unless --emit-text forces textual output.",
	Args:  cobra.ExactArgs(1),
	RunE:  convertExecution,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output path (required)")
	convertCmd.Flags().Bool("emit-text", false, "write canonical textual IR")
	_ = convertCmd.MarkFlagRequired("output")
}

func convertExecution(cmd *cobra.Command, args []string) error {
	input := args[0]
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	emitText, err := cmd.Flags().GetBool("emit-text")
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	isBitcode := strings.EqualFold(filepath.Ext(input), ".bc")
	switch {
	case isBitcode || emitText:
		var text string
		if isBitcode {
			text, err = bitcode.FileToText(ctx, input)
		} else {
			var data []byte
			data, err = os.ReadFile(input)
			if err == nil {
				text, err = bitcode.Canonical(string(data))
			}
		}
		if err != nil {
			return err
		}
		return os.WriteFile(output, []byte(text), 0o644)
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		bc, err := bitcode.TextToBitcode(ctx, string(data))
		if err != nil {
			return err
		}
		return os.WriteFile(output, bc, 0o644)
	}
}
