package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	filter string
	output string
	live   bool
)

var rootCmd = &cobra.Command{
	Use:   "filterer [file]",
	Short: "A terminal utility for filtering lines of a text file",
	Long: `Filterer loads a text file, shows its lines, filters them by a
case-insensitive substring and can save the filtered lines to a new file
in the same encoding as the input, with line endings preserved exactly.

Usage:
  filterer file.txt                      # Open a file interactively
  filterer                               # Start empty, open with Ctrl+O
  filterer file.txt -f error -o out.txt  # Filter and save without the UI`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &Config{
			Filter: filter,
			Output: output,
			Live:   live,
		}
		if len(args) > 0 {
			config.Path = args[0]
		}

		// With an output path the whole load/filter/save pipeline runs
		// headless, no TUI
		if config.Output != "" {
			return runHeadless(cmd, config)
		}

		app := NewApp(config)
		return app.Run()
	},
	SilenceUsage: true,
}

func runHeadless(cmd *cobra.Command, config *Config) error {
	if config.Path == "" {
		return fmt.Errorf("an input file is required with --output")
	}

	engine := NewFilterEngine()
	doc, err := engine.Load(config.Path)
	if err != nil {
		return err
	}

	matched := engine.Filter(doc, config.Filter)
	if err := engine.Save(config.Output, matched, doc.Encoding); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d lines to %s (%s)\n",
		len(matched), len(doc.Lines), config.Output, doc.Encoding)
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&filter, "filter", "f", "", "Initial filter text")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Save the filtered lines to this path and exit without the TUI")
	rootCmd.Flags().BoolVar(&live, "live", true, "Filter as you type")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
