package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/truthlang/truth/truth"
	"github.com/truthlang/truth/truthfs"
)

var faultsFormat string

var faultsCmd = &cobra.Command{
	Use:   "faults <file>",
	Short: "Print one file's fault set in the canonical rendering or as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runFaults,
}

func init() {
	faultsCmd.Flags().StringVar(&faultsFormat, "format", "text", `output format: "text" or "json"`)
	rootCmd.AddCommand(faultsCmd)
}

func runFaults(cmd *cobra.Command, args []string) error {
	path := args[0]
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	loader, err := truthfs.NewLoader(filepath.Dir(path))
	if err != nil {
		return err
	}
	program := truth.NewProgram(truth.WithUriReader(loader))

	doc, err := program.AddDocumentFromText(string(text))
	if err != nil {
		return err
	}

	faults := doc.Faults()
	switch faultsFormat {
	case "json":
		return writeFaultsJSON(cmd.OutOrStdout(), faults, doc.URI())
	case "text":
		for _, f := range faults {
			fmt.Fprintln(cmd.OutOrStdout(), f.Render(doc.URI()))
		}
		return nil
	default:
		return fmt.Errorf("truth faults: unknown --format %q", faultsFormat)
	}
}
