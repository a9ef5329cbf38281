package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weibocrawl/pkg/auth"
	"weibocrawl/pkg/config"
	"weibocrawl/pkg/corpus"
	"weibocrawl/pkg/crawler"
	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/seeds"
)

var (
	// Crawl command flags
	cookie      string
	cookieFile  string
	userIDsFile string
	maxPages    int
	totalLimit  int
	outputFile  string
	readable    bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a batch of users into a JSON-lines corpus",
	Long: `Crawl the timelines of all users listed in the user-id file, enrich
every post with its top comments and write the results as one JSON
record per line.

The run stops when the total post target is reached, when enough users
have been processed to satisfy the early-stop heuristic, or when the
user list is exhausted.

A session cookie is required, provided through one of:
  - the --cookie flag
  - a cookie file (--cookie-file, JSON export or plain cookie string)
  - stored credentials (use 'weibocrawl auth login' to store)
  - the WEIBOCRAWL_COOKIE environment variable`,
	Example: `  # Crawl using defaults (user_ids.txt, 10000 posts)
  weibocrawl crawl --cookie-file weibo_cookies.json

  # Smaller run with a custom output file
  weibocrawl crawl --user-ids-file seeds.txt --total-limit 500 --output corpus.txt

  # Deeper timelines per user
  weibocrawl crawl --max-pages 10`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&cookie, "cookie", "", "session cookie string")
	crawlCmd.Flags().StringVar(&cookieFile, "cookie-file", "", "path to a cookie file (JSON export or plain text)")
	crawlCmd.Flags().StringVar(&userIDsFile, "user-ids-file", "", "file with one user id per line (default: user_ids.txt)")
	crawlCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum timeline pages per user (default: 5)")
	crawlCmd.Flags().IntVar(&totalLimit, "total-limit", 0, "total post target for the batch (default: 10000)")
	crawlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "corpus output file (default: all_weibos.txt)")
	crawlCmd.Flags().BoolVar(&readable, "readable", true, "also write a human-readable rendering")
}

// crawlFlags collects the shared session and pacing flags
func crawlFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if cookie != "" {
		flags["cookie"] = cookie
	}
	if cookieFile != "" {
		flags["cookie-file"] = cookieFile
	}
	if userIDsFile != "" {
		flags["user-ids-file"] = userIDsFile
	}
	if maxPages > 0 {
		flags["max-pages"] = maxPages
	}
	if totalLimit > 0 {
		flags["total-limit"] = totalLimit
	}
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}

// setupRun loads config, initializes logging and resolves the cookie
func setupRun() (*config.Config, error) {
	cfg, err := config.Load(configFile, crawlFlags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := auth.ResolveCookie(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := setupRun()
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	log.WithField("version", version).Info("Weibo crawler starting")

	userIDs, err := seeds.LoadUserIDs(cfg.Output.UserIDsFile)
	if err != nil {
		return err
	}

	c := crawler.New(cfg, log)
	result, err := c.CrawlBatch(userIDs)
	if err != nil {
		return err
	}

	if err := corpus.WriteFile(cfg.Output.CorpusFile, result.Posts, log); err != nil {
		return err
	}

	fmt.Printf("Crawled %d posts from %d users (%s)\n",
		len(result.Posts), result.UsersProcessed, result.StopReason)
	fmt.Printf("Corpus written to %s\n", cfg.Output.CorpusFile)

	if readable {
		if _, err := corpus.RenderFile(cfg.Output.CorpusFile, cfg.Output.ReadableFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: readable rendering failed: %v\n", err)
		} else {
			fmt.Printf("Readable rendering written to %s\n", cfg.Output.ReadableFile)
		}
	}

	return nil
}
