package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"weibocrawl/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Weibo Crawler configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WEIBOCRAWL_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	RunE:  runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the merged configuration from all sources, with the cookie masked.`,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".weibocrawl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	exampleConfig := `# Weibo Crawler configuration file.
# Environment variables prefixed with WEIBOCRAWL_ override these values,
# for example WEIBOCRAWL_COOKIE or WEIBOCRAWL_TOTAL_LIMIT.

# Session and transport settings
weibo:
  # Session cookie copied from your browser (or use 'weibocrawl auth login')
  cookie: ""

  # Path to a browser cookie export (JSON array of {name, value})
  cookie_file: ""

  # Leave empty to use the default user agent
  user_agent: ""

  base_url: "https://weibo.com"
  request_timeout: 30s

# Crawl pacing and bounds
crawl:
  page_size: 20
  max_pages: 5
  comment_count: 10
  total_limit: 10000
  page_delay: 1s
  user_delay: 1s

# Bounded retry for seed collection fetches
retry:
  max_attempts: 5
  base_delay: 3s
  max_delay: 1m

# Output file locations
output:
  corpus_file: "all_weibos.txt"
  readable_file: "all_weibos_readable.txt"
  user_ids_file: "user_ids.txt"

# Logging
logging:
  # debug, info, warn, error
  level: "info"

  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayCfg := *cfg
	if displayCfg.Weibo.Cookie != "" {
		if len(displayCfg.Weibo.Cookie) > 8 {
			displayCfg.Weibo.Cookie = displayCfg.Weibo.Cookie[:4] + "..." + displayCfg.Weibo.Cookie[len(displayCfg.Weibo.Cookie)-4:]
		} else {
			displayCfg.Weibo.Cookie = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (WEIBOCRAWL_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (auto-detected)")
	}
	fmt.Println("4. Default values")
	return nil
}
