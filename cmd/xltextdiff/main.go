// Package main provides the CLI that turns spreadsheets into diff-friendly text.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/javajack/xlbridge/textdiff"
	"github.com/spf13/cobra"
)

var (
	bom     bool
	verbose bool
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xltextdiff",
		Short: "Convert spreadsheets to line-oriented text for diffing",
		Long: `xltextdiff normalizes xlsx and csv files into stable text: one
===[sheet]=== header per sheet followed by its non-blank rows, comma joined.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	convertCmd := &cobra.Command{
		Use:   "convert <spreadsheet-or-csv> <output.txt>",
		Short: "Write the normalized text of a spreadsheet to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return textdiff.ConvertFile(args[0], args[1],
				textdiff.WithBOM(bom), textdiff.WithLogger(newLogger(cmd.ErrOrStderr())))
		},
	}
	convertCmd.Flags().BoolVar(&bom, "bom", false, "Prefix the output with a UTF-8 byte order mark")

	diffCmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Print a unified diff of two spreadsheets' normalized text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := textdiff.DiffFiles(args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	rootCmd.AddCommand(convertCmd, diffCmd)
	return rootCmd
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
