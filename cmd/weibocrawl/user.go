package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"weibocrawl/pkg/crawler"
	"weibocrawl/pkg/logger"
)

var userOutputFile string

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user <uid>",
	Short: "Crawl a single user's timeline into a readable report",
	Long: `Crawl one user's timeline, enrich the posts with comments and write
a human-readable report.

The report defaults to <uid>_weibos.txt in the current directory.`,
	Example: `  # Crawl one user
  weibocrawl user 1234567890 --cookie-file weibo_cookies.json

  # Write the report to a specific file
  weibocrawl user 1234567890 --output report.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runUser,
}

func init() {
	rootCmd.AddCommand(userCmd)

	userCmd.Flags().StringVar(&cookie, "cookie", "", "session cookie string")
	userCmd.Flags().StringVar(&cookieFile, "cookie-file", "", "path to a cookie file (JSON export or plain text)")
	userCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum timeline pages (default: 5)")
	userCmd.Flags().StringVarP(&userOutputFile, "output", "o", "", "report file (default: <uid>_weibos.txt)")
}

func runUser(cmd *cobra.Command, args []string) error {
	uid := strings.TrimSpace(args[0])

	cfg, err := setupRun()
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	c := crawler.New(cfg, log)

	path, err := c.CrawlUserToFile(uid, userOutputFile)
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", path)
	return nil
}
