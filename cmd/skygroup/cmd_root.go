package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands.
type app struct {
	log       zerolog.Logger
	logLevel  string
	logFormat string
}

func newRootCmd(version string) *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "skygroup",
		Short: "find groups of blended objects in source catalogs",
		Long: `
skygroup finds groups of objects that lie within a separation threshold of
one another, through chains of neighbours, and collapses each group to its
centre of mass. It can also split a catalog into compact batches and convert
detector pixel positions to field-of-view coordinates.
`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error, disabled)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(newGroupsCmd(a), newPartitionCmd(a), newFOVCmd(a))
	return root
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parsing --log-level: %w", err)
	}

	// Catalogs are processed concurrently.
	out := zerolog.SyncWriter(w)
	switch format {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, NoColor: !isTerminal(w), TimeFormat: time.TimeOnly}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid --log-format %q, allowed values are console and json", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
