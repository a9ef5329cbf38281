package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weibocrawl/pkg/analysis"
	"weibocrawl/pkg/config"
	"weibocrawl/pkg/logger"
)

var (
	analyzeInput    string
	analyzeKeywords []string
	analyzeTopN     int
	analyzeOutDir   string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run keyword and hashtag analysis over a corpus",
	Long: `Analyze a crawled corpus and write CSV reports:
  - monthly mention counts per keyword
  - a keyword co-occurrence matrix
  - the most frequent #hashtags#

Keyword reports are only produced when keywords are given; the hashtag
report is always written.`,
	Example: `  # Hashtag report only
  weibocrawl analyze

  # Keyword trends and co-occurrence
  weibocrawl analyze --keywords 经济,政策,改革 --out-dir reports`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "corpus file to analyze (default: all_weibos.txt)")
	analyzeCmd.Flags().StringSliceVarP(&analyzeKeywords, "keywords", "k", nil, "comma-separated keywords to track")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 50, "number of top hashtags to report")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", ".", "directory for the CSV reports")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	in := analyzeInput
	if in == "" {
		in = cfg.Output.CorpusFile
	}

	count, err := analysis.Report(in, analyzeKeywords, analyzeTopN, analyzeOutDir, logger.GetLogger())
	if err != nil {
		return err
	}

	fmt.Printf("Analyzed %d posts, reports written to %s\n", count, analyzeOutDir)
	return nil
}
