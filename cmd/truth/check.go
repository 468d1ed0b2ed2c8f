package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/truthlang/truth/truth"
	"github.com/truthlang/truth/internal/obs"
	"github.com/truthlang/truth/truthfs"
)

var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Parse and resolve references for each file, reporting its fault set",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	metrics := obs.NewMetrics()
	anyErrors := false

	for _, path := range args {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		loader, err := truthfs.NewLoader(filepath.Dir(path))
		if err != nil {
			return err
		}
		program := truth.NewProgram(truth.WithUriReader(loader))
		metrics.Attach(program, logger)

		doc, err := program.AddDocumentFromText(string(text))
		if err != nil {
			return err
		}

		faults := doc.Faults()
		printFaultReport(cmd.OutOrStdout(), path, faults, doc.URI())
		if hasErrorFault(faults) {
			anyErrors = true
		}
	}

	if anyErrors {
		os.Exit(1)
	}
	return nil
}
