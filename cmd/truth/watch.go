package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/truthlang/truth/truth"
	"github.com/truthlang/truth/internal/obs"
	"github.com/truthlang/truth/truthfs"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Open every *.truth file under dir and keep a Program live as files change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	loader, err := truthfs.NewLoader(dir)
	if err != nil {
		return err
	}

	program := truth.NewProgram(truth.WithUriReader(loader))
	metrics := obs.NewMetrics()
	metrics.Attach(program, logger)
	subscribeWatchPrinter(cmd, program)

	watcher, err := truthfs.NewWatcher(program, loader)
	if err != nil {
		return err
	}
	defer watcher.Close()

	paths, err := findTruthFiles(dir)
	if err != nil {
		return err
	}
	for _, rel := range paths {
		u := &truth.Uri{Protocol: "file", Path: rel}
		doc, err := program.AddDocumentFromURI(cmd.Context(), u, loader)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "truth watch: %s: %v\n", rel, err)
			continue
		}
		if err := watcher.Watch(doc); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "truth watch: %s: %v\n", rel, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher.Start(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (%d documents)\n", dir, len(program.Documents()))
	err = watcher.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// findTruthFiles returns every *.truth file under root, relative to root, in
// a stable order.
func findTruthFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".truth") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}

// subscribeWatchPrinter prints one line per cause-bus event so a human
// running `truth watch` in a terminal sees the invalidate/revalidate pairing
// spec §8 testable property 6 describes.
func subscribeWatchPrinter(cmd *cobra.Command, program *truth.Program) {
	out := cmd.OutOrStdout()
	program.Subscribe(truth.CauseDocumentCreate, func(c truth.Cause) {
		fmt.Fprintf(out, "+ opened %s\n", c.Document.URI().StoreString())
	})
	program.Subscribe(truth.CauseInvalidate, func(c truth.Cause) {
		fmt.Fprintf(out, "  invalidate %d statement(s)\n", len(c.Statements))
	})
	program.Subscribe(truth.CauseRevalidate, func(c truth.Cause) {
		fmt.Fprintf(out, "  revalidate %d statement(s)\n", len(c.Statements))
	})
	program.Subscribe(truth.CauseFaultChange, func(c truth.Cause) {
		for _, f := range c.FaultsAdded {
			fmt.Fprintf(out, "  %s\n", f.Render(nil))
		}
	})
}
