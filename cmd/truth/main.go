// Command truth is the CLI front end for the Truth language engine: it
// parses documents, reports their fault sets, and can watch a directory for
// live reload (spec §6 NEW "CLI surface").
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/truthlang/truth/internal/obs"
)

var (
	debug bool

	ring   = obs.NewRingHandler(512)
	logger = obs.NewLogger(ring)
)

var rootCmd = &cobra.Command{
	Use:   "truth",
	Short: "Parse, validate, and watch Truth language documents",
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "dump retained debug logs on exit")
	cobra.OnInitialize(func() {
		if debug {
			obs.Level.Set(slog.LevelDebug)
		}
	})
	defer func() {
		if debug {
			ring.Dump(os.Stderr)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
