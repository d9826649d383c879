package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"

	"qir/internal/eval"
	"qir/internal/inst"
	"qir/internal/link"
	"qir/internal/manifest"
	"qir/internal/observ"
	"qir/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.ll|file.bc>",
	Short: "Execute a QIR module and print its trace",
	Long:  "Execute the module's entry point against the trace processor and print the reconstructed instruction trace.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().String("entry", "", "entry point name filter")
	runCmd.Flags().String("results", "", "deterministic measurement bits, MSB-first (e.g. 10)")
	runCmd.Flags().String("manifest", "", "qir.toml run profile")
	runCmd.Flags().String("trace-out", "", "write the executed trace to a file")
	runCmd.Flags().Bool("ui", false, "open the interactive trace viewer")
}

func runExecution(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	entry, err := cmd.Flags().GetString("entry")
	if err != nil {
		return err
	}
	resultBits, err := cmd.Flags().GetString("results")
	if err != nil {
		return err
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return err
	}
	traceOut, err := cmd.Flags().GetString("trace-out")
	if err != nil {
		return err
	}
	useUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	if manifestPath != "" {
		cfg, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		if entry == "" {
			entry = cfg.Run.Entry
		}
		if resultBits == "" {
			resultBits = cfg.Run.Results
		}
	}
	bits, ok := eval.ParseBits(resultBits)
	if !ok {
		return fmt.Errorf("--results must contain only 0 and 1, got %q", resultBits)
	}

	timer := observ.NewTimer()
	var (
		mod   *ir.Module
		model *inst.Model
	)
	err = timer.Track("load", func() error {
		var err error
		mod, err = link.LoadFile(cmd.Context(), filePath)
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
	err = timer.Track("execute", func() error {
		var err error
		model, err = eval.Trace(mod, entry, bits)
		return err
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}

	if traceOut != "" {
		if err := eval.WriteTrace(traceOut, model); err != nil {
			return err
		}
	}
	if useUI && isTerminal(os.Stdout) {
		if err := ui.RunTraceViewer(filePath, model); err != nil {
			return err
		}
	} else {
		inst.Dump(cmd.OutOrStdout(), model)
	}
	if showTimings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	return nil
}
