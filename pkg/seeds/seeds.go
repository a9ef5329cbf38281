// Package seeds builds and loads the user-id list a batch crawl runs
// over. Ids are collected from a seed user's friend list page by page,
// with every fetch bounded by the configured retry policy.
package seeds

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"weibocrawl/pkg/config"
	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/ratelimit"
	"weibocrawl/pkg/retry"
	"weibocrawl/pkg/weibo"
)

// Fetcher is the API surface the collector needs from the Weibo client
type Fetcher interface {
	FetchFriendsPage(uid string, page, count int) ([]weibo.RawUser, error)
}

// Collector gathers candidate user ids from a seed user's friend list
type Collector struct {
	client   Fetcher
	retryCfg *retry.Config
	pacer    ratelimit.Limiter
	logger   logger.Logger
}

// NewCollector creates a collector. Retry bounds and page pacing come
// from cfg.
func NewCollector(client Fetcher, cfg *config.Config, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{
		client: client,
		retryCfg: &retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff: &retry.ExponentialBackoff{
				BaseDelay:    cfg.Retry.BaseDelay.Std(),
				MaxDelay:     cfg.Retry.MaxDelay.Std(),
				Multiplier:   2.0,
				JitterFactor: 0.1,
			},
			RetryIf: retry.DefaultRetryIf,
			Context: context.Background(),
			Logger:  log,
		},
		pacer:  ratelimit.NewPacer(cfg.Crawl.PageDelay.Std()),
		logger: log,
	}
}

// Collect pages through the seed user's friend list until an empty
// page, deduplicating ids in first-seen order. A page that still fails
// after the retry budget aborts the collection; ids gathered so far
// are returned alongside the error.
func (c *Collector) Collect(seedUID string, maxCount int) ([]string, error) {
	if seedUID == "" {
		return nil, fmt.Errorf("seed uid is required")
	}

	log := c.logger.WithField("seed_uid", seedUID)
	log.Info("collecting user ids from friend list")

	seen := make(map[string]struct{})
	var ids []string

	for page := 1; ; page++ {
		fetchPage := page
		users, err := retry.DoWithResult(func() ([]weibo.RawUser, error) {
			return c.client.FetchFriendsPage(seedUID, fetchPage, weibo.DefaultPageSize)
		}, c.retryCfg)
		if err != nil {
			return ids, fmt.Errorf("friends page %d failed: %w", page, err)
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			id := userID(u)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			if maxCount > 0 && len(ids) >= maxCount {
				log.InfoWithFields("collection target reached", map[string]interface{}{
					"ids":   len(ids),
					"pages": page,
				})
				return ids, nil
			}
		}

		log.DebugWithFields("friends page processed", map[string]interface{}{
			"page": page,
			"ids":  len(ids),
		})
		c.pacer.Wait()
	}

	log.InfoWithFields("friend list exhausted", map[string]interface{}{"ids": len(ids)})
	return ids, nil
}

// CollectToFile collects ids and writes them to path, one per line.
// Returns the number of ids written.
func (c *Collector) CollectToFile(seedUID string, maxCount int, path string) (int, error) {
	ids, err := c.Collect(seedUID, maxCount)
	if err != nil {
		return 0, err
	}
	if err := SaveUserIDs(path, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func userID(u weibo.RawUser) string {
	if u.IDStr != "" {
		return u.IDStr
	}
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return ""
}

// LoadUserIDs reads a user-id list file, one id per line. Blank lines
// and lines starting with '#' are skipped.
func LoadUserIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user id file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user id file: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no user ids found in %s", path)
	}
	return ids, nil
}

// SaveUserIDs writes ids to path, one per line
func SaveUserIDs(path string, ids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create user id file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return fmt.Errorf("failed to write user id: %w", err)
		}
	}
	return w.Flush()
}
