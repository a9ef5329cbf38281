package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weibocrawl/pkg/config"
	"weibocrawl/pkg/corpus"
	"weibocrawl/pkg/logger"
)

var (
	renderInput  string
	renderOutput string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a corpus file into readable text",
	Long: `Convert a JSON-lines corpus into a human-readable text file with one
labeled block per post. Malformed corpus lines are skipped.`,
	Example: `  # Render the default corpus
  weibocrawl render

  # Render a specific corpus file
  weibocrawl render --input corpus.txt --output corpus_readable.txt`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "corpus file to read (default: all_weibos.txt)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "readable file to write (default: all_weibos_readable.txt)")
}

func runRender(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	in := renderInput
	if in == "" {
		in = cfg.Output.CorpusFile
	}
	out := renderOutput
	if out == "" {
		out = cfg.Output.ReadableFile
	}

	count, err := corpus.RenderFile(in, out)
	if err != nil {
		return err
	}

	fmt.Printf("Rendered %d posts to %s\n", count, out)
	return nil
}
