// Package crawler orchestrates the crawl: page-by-page fetching per
// user, per-post comment enrichment and multi-user batch aggregation.
// Execution is strictly sequential; one request is in flight at a time.
package crawler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"weibocrawl/pkg/config"
	"weibocrawl/pkg/corpus"
	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/ratelimit"
	"weibocrawl/pkg/weibo"
)

// StopReason explains why a crawl or batch run terminated
type StopReason string

const (
	// Per-user pagination stop reasons
	StopMaxPagesReached    StopReason = "max_pages_reached"
	StopEmptyPage          StopReason = "empty_page"
	StopShortPage          StopReason = "short_page"
	StopAllEndpointsFailed StopReason = "all_endpoints_failed"

	// Batch-level stop reasons
	StopTargetReached     StopReason = "target_reached"
	StopEarlyHeuristic    StopReason = "early_stop_heuristic"
	StopExhaustedUserList StopReason = "exhausted_user_list"
)

// Early-stop thresholds: once this many users have been processed and
// the accumulator holds this fraction of the target, the batch ends at
// the next user boundary. Taken verbatim from operational tuning.
const (
	earlyStopMinUsers = 20
	earlyStopFraction = 0.8
)

// requestBudgetPerMinute caps how many requests a run may issue per
// minute, on top of the fixed pacing delays.
const requestBudgetPerMinute = 100

// UserProfile identifies the crawled user. ScreenName falls back to
// the uid when the profile lookup fails.
type UserProfile struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// CrawlResult is the outcome of paginating one user's timeline
type CrawlResult struct {
	Profile    UserProfile
	Posts      []weibo.RawPost
	StopReason StopReason
}

// BatchResult is the outcome of a multi-user batch crawl. Posts are
// ordered user-first, then page, then within-page.
type BatchResult struct {
	RunID          string
	Posts          []corpus.Post
	UsersProcessed int
	StopReason     StopReason
}

// Fetcher is the API surface the crawler needs from the Weibo client
type Fetcher interface {
	FetchProfile(uid string) (*weibo.RawUser, error)
	FetchTimelinePage(uid string, page, count int) ([]weibo.RawPost, int, error)
	FetchComments(postID string, count int) ([]weibo.RawComment, error)
}

// Crawler drives the sequential crawl loop
type Crawler struct {
	client    Fetcher
	cfg       *config.Config
	pagePacer ratelimit.Limiter
	userPacer ratelimit.Limiter
	logger    logger.Logger
}

// New creates a crawler with a real Weibo client built from cfg. The
// session is configured once here and never mutated afterwards.
func New(cfg *config.Config, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}

	client := weibo.NewClient(cfg.Weibo.BaseURL, cfg.Weibo.RequestTimeout.Std(), log)
	client.SetCookie(cfg.Weibo.Cookie)
	if cfg.Weibo.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Weibo.UserAgent)
	}
	client.SetLimiter(ratelimit.NewTokenBucket(requestBudgetPerMinute, time.Minute))

	return NewWithClient(client, cfg, log)
}

// NewWithClient creates a crawler on top of an existing client
func NewWithClient(client Fetcher, cfg *config.Config, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Crawler{
		client:    client,
		cfg:       cfg,
		pagePacer: ratelimit.NewPacer(cfg.Crawl.PageDelay.Std()),
		userPacer: ratelimit.NewPacer(cfg.Crawl.UserDelay.Std()),
		logger:    log,
	}
}

// CrawlUser paginates one user's timeline from page 1 until a stop
// condition fires. Whatever was accumulated before the stop is always
// returned, including on total endpoint failure.
func (c *Crawler) CrawlUser(uid string) (*CrawlResult, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}

	profile := UserProfile{ID: uid, ScreenName: uid}
	if user, err := c.client.FetchProfile(uid); err != nil {
		c.logger.WarnWithFields("profile fetch failed, using uid as screen name", map[string]interface{}{
			"uid":   uid,
			"error": err.Error(),
		})
	} else if user.ScreenName != "" {
		profile.ScreenName = user.ScreenName
	}

	log := c.logger.WithFields(map[string]interface{}{
		"uid":         uid,
		"screen_name": profile.ScreenName,
	})
	log.Info("starting user crawl")

	result := &CrawlResult{Profile: profile}
	pageSize := c.cfg.Crawl.PageSize
	maxPages := c.cfg.Crawl.MaxPages

	for page := 1; ; page++ {
		posts, _, err := c.client.FetchTimelinePage(uid, page, pageSize)
		if err != nil {
			result.StopReason = StopAllEndpointsFailed
			log.WarnWithFields("timeline endpoints exhausted", map[string]interface{}{
				"page":        page,
				"accumulated": len(result.Posts),
			})
			break
		}

		if len(posts) == 0 {
			result.StopReason = StopEmptyPage
			break
		}

		result.Posts = append(result.Posts, posts...)
		log.DebugWithFields("page fetched", map[string]interface{}{
			"page":        page,
			"posts":       len(posts),
			"accumulated": len(result.Posts),
		})

		// A partial page means no further pages exist
		if len(posts) < pageSize {
			result.StopReason = StopShortPage
			break
		}

		if maxPages > 0 && page >= maxPages {
			result.StopReason = StopMaxPagesReached
			break
		}

		c.pagePacer.Wait()
	}

	log.InfoWithFields("user crawl finished", map[string]interface{}{
		"posts":       len(result.Posts),
		"stop_reason": string(result.StopReason),
	})
	return result, nil
}

// enrichPost normalizes a raw post and attaches its comment batch.
// Enrichment failure is isolated: the post is kept with an empty
// comment list.
func (c *Crawler) enrichPost(raw *weibo.RawPost) corpus.Post {
	post := corpus.NewPost(raw)
	if post.ID == "" {
		return post
	}

	rawComments, err := c.client.FetchComments(post.ID, c.cfg.Crawl.CommentCount)
	if err != nil {
		c.logger.DebugWithFields("comment fetch failed, keeping post without comments", map[string]interface{}{
			"post_id": post.ID,
			"error":   err.Error(),
		})
		return post
	}

	comments := make([]corpus.Comment, 0, len(rawComments))
	for _, rc := range rawComments {
		comments = append(comments, corpus.NewComment(rc))
	}
	post.Comments = comments
	return post
}

// CrawlBatch crawls the given users in order, enriching every post and
// accumulating into one flat ordered sequence. The target check runs
// after each appended post so the accumulator stops at exactly the
// target, even mid-user; the early-stop heuristic only fires at a user
// boundary. A single user's failure never aborts the batch.
func (c *Crawler) CrawlBatch(userIDs []string) (*BatchResult, error) {
	target := c.cfg.Crawl.TotalLimit
	if target <= 0 {
		return nil, fmt.Errorf("total limit must be positive, got %d", target)
	}

	result := &BatchResult{
		RunID: uuid.NewString(),
		Posts: make([]corpus.Post, 0, target),
	}

	log := c.logger.WithField("run_id", result.RunID)
	log.InfoWithFields("starting batch crawl", map[string]interface{}{
		"users":     len(userIDs),
		"target":    target,
		"max_pages": c.cfg.Crawl.MaxPages,
	})

	for i, uid := range userIDs {
		if i > 0 {
			c.userPacer.Wait()
		}

		crawl, err := c.CrawlUser(uid)
		if err != nil {
			log.WarnWithFields("user crawl failed, continuing with next user", map[string]interface{}{
				"uid":   uid,
				"error": err.Error(),
			})
			result.UsersProcessed = i + 1
			continue
		}

		for j := range crawl.Posts {
			result.Posts = append(result.Posts, c.enrichPost(&crawl.Posts[j]))

			if len(result.Posts) >= target {
				result.UsersProcessed = i + 1
				result.StopReason = StopTargetReached
				log.InfoWithFields("target reached, stopping batch", map[string]interface{}{
					"posts":           len(result.Posts),
					"users_processed": result.UsersProcessed,
				})
				return result, nil
			}
		}

		result.UsersProcessed = i + 1
		log.InfoWithFields("user processed", map[string]interface{}{
			"uid":         uid,
			"user_posts":  len(crawl.Posts),
			"accumulated": len(result.Posts),
			"stop_reason": string(crawl.StopReason),
		})

		if result.UsersProcessed >= earlyStopMinUsers &&
			float64(len(result.Posts)) >= earlyStopFraction*float64(target) {
			result.StopReason = StopEarlyHeuristic
			log.InfoWithFields("early-stop heuristic met, stopping batch", map[string]interface{}{
				"posts":           len(result.Posts),
				"users_processed": result.UsersProcessed,
			})
			return result, nil
		}
	}

	result.StopReason = StopExhaustedUserList
	log.InfoWithFields("user list exhausted", map[string]interface{}{
		"posts":           len(result.Posts),
		"users_processed": result.UsersProcessed,
	})
	return result, nil
}

// CrawlUserToFile crawls a single user, enriches the posts and writes
// a readable report. An empty path defaults to "<uid>_weibos.txt".
// Returns the written path.
func (c *Crawler) CrawlUserToFile(uid, path string) (string, error) {
	crawl, err := c.CrawlUser(uid)
	if err != nil {
		return "", err
	}
	if len(crawl.Posts) == 0 {
		return "", fmt.Errorf("no posts found for user %s (%s)", uid, crawl.StopReason)
	}

	posts := make([]corpus.Post, 0, len(crawl.Posts))
	for i := range crawl.Posts {
		posts = append(posts, c.enrichPost(&crawl.Posts[i]))
	}

	if path == "" {
		path = fmt.Sprintf("%s_weibos.txt", uid)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	header := corpus.RenderHeader(crawl.Profile.ScreenName, uid, len(posts), time.Now())
	if _, err := f.WriteString(header); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	if err := corpus.Render(f, posts); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return path, nil
}
