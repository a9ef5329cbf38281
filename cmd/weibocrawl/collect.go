package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/seeds"
	"weibocrawl/pkg/weibo"
)

var (
	collectCount  int
	collectOutput string
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect <seed-uid>",
	Short: "Collect user ids from a seed user's friend list",
	Long: `Collect candidate user ids by paging through a seed user's friend
list. Each page fetch is retried with exponential backoff up to the
configured attempt limit; a page that keeps failing aborts the
collection.

The resulting id file feeds the 'crawl' command.`,
	Example: `  # Collect up to 200 ids into user_ids.txt
  weibocrawl collect 1234567890 --count 200

  # Collect the entire friend list into a custom file
  weibocrawl collect 1234567890 --count 0 --output seeds.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&cookie, "cookie", "", "session cookie string")
	collectCmd.Flags().StringVar(&cookieFile, "cookie-file", "", "path to a cookie file (JSON export or plain text)")
	collectCmd.Flags().IntVar(&collectCount, "count", 200, "maximum number of ids to collect (0 for no limit)")
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "", "id file to write (default: user_ids.txt)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	seedUID := strings.TrimSpace(args[0])

	cfg, err := setupRun()
	if err != nil {
		return err
	}

	log := logger.GetLogger()

	client := weibo.NewClient(cfg.Weibo.BaseURL, cfg.Weibo.RequestTimeout.Std(), log)
	client.SetCookie(cfg.Weibo.Cookie)
	if cfg.Weibo.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Weibo.UserAgent)
	}

	outPath := collectOutput
	if outPath == "" {
		outPath = cfg.Output.UserIDsFile
	}

	collector := seeds.NewCollector(client, cfg, log)

	start := time.Now()
	written, err := collector.CollectToFile(seedUID, collectCount, outPath)
	if err != nil {
		return err
	}

	fmt.Printf("Collected %d user ids in %s\n", written, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Id file written to %s\n", outPath)
	return nil
}
