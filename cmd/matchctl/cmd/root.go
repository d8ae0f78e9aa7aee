// Package cmd implements the matchctl command line, the Go
// counterpart of original_source/client/main.cpp: a single flat
// command with independent flags rather than a subcommand tree, plus
// a small "devices" subcommand for adapter discovery.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Drive and verify the approximate-string-match accelerator",
	Long: `matchctl loads a dictionary into the accelerator and runs probe
searches against it, over either a simulated device or real hardware.

Examples:
  matchctl --device verilator --load-dictionary words.txt --search hest
  matchctl --device icestick --chip-select cs --search hest
  matchctl --device verilator --test`,
	PersistentPreRun: func(cobraCmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: runSearch,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&flagDevice, "device", "verilator",
		"target device (verilator, icestick, uart)")
	rootCmd.Flags().StringVar(&flagChipSelect, "chip-select", "none",
		"FTDI chip-select line for --device icestick (none, cs, cs2, cs3)")
	rootCmd.Flags().StringVar(&flagRevision, "revision", "compact",
		"accelerator register-map revision (compact, wishbone)")
	rootCmd.Flags().StringVar(&flagPort, "port", "",
		"serial port path for --device uart")
	rootCmd.Flags().StringVar(&flagVCDFile, "vcd-file", "",
		"write a VCD trace of the simulated bus to this path (--device verilator only)")
	rootCmd.Flags().BoolVar(&flagNoInit, "no-init", false,
		"skip zeroing the bitvector table before loading the dictionary")
	rootCmd.Flags().StringVar(&flagLoadDictionary, "load-dictionary", "",
		"path to a one-word-per-line dictionary file")
	rootCmd.Flags().StringVar(&flagSearch, "search", "",
		"probe word to search for")
	rootCmd.Flags().BoolVar(&flagTest, "test", false,
		"run the built-in regression and randomized agreement test instead of a live search")
}

var (
	flagDevice         string
	flagChipSelect     string
	flagRevision       string
	flagPort           string
	flagVCDFile        string
	flagNoInit         bool
	flagLoadDictionary string
	flagSearch         string
	flagTest           bool
)
