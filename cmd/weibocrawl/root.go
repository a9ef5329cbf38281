package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weibocrawl",
	Short: "A Weibo timeline crawler that builds text corpora",
	Long: `Weibo Crawler is a command-line tool for collecting Weibo posts and
comments into a JSON-lines corpus.

Features:
  - Batch crawls over a user-id list with a total post target
  - Endpoint fallback across the known timeline API variants
  - Per-post comment enrichment
  - Seed-based user-id collection from friend lists
  - Keyword and hashtag analysis over the collected corpus
  - Secure cookie storage using the system keychain`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .weibocrawl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`Weibo Crawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
