package weibo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"weibocrawl/pkg/apierr"
	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/ratelimit"
)

// ErrAllEndpointsFailed is the distinguished failure signal returned
// when every timeline endpoint template has been tried without
// yielding a usable response. It is never escalated to a fatal error.
var ErrAllEndpointsFailed = errors.New("all timeline endpoints failed")

// Client is a Weibo web API client. The session (headers, cookie) is
// configured once at construction and treated as read-only afterwards.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new Weibo API client
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "zh-CN,zh;q=0.9",
			"Referer":         "https://weibo.com/",
			"Origin":          "https://weibo.com",
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client. Headers must be set
// before the first request; the session is read-only once crawling
// starts.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetCookie sets the session cookie header
func (c *Client) SetCookie(cookie string) {
	if cookie != "" {
		c.headers["Cookie"] = cookie
	}
}

// SetLimiter installs a request budget the client waits on before
// every request.
func (c *Client) SetLimiter(limiter ratelimit.Limiter) {
	c.limiter = limiter
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a GET request with the configured headers
func (c *Client) doRequest(url string) (*http.Response, *apierr.Error) {
	if c.limiter != nil {
		c.limiter.Wait()
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, apierr.New(apierr.KindUnknown, 0, "failed to create request: %v", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"url": url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, apierr.New(apierr.KindTransport, 0, "transport error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response body.
// Non-200 statuses and malformed bodies come back as typed errors, so
// callers branch on the error kind rather than on exceptions.
func (c *Client) getJSON(url string, target interface{}) *apierr.Error {
	resp, apiErr := c.doRequest(url)
	if apiErr != nil {
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := apierr.FromStatus(resp.StatusCode)
		return apierr.New(kind, resp.StatusCode, "unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.New(apierr.KindTransport, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return apierr.New(apierr.KindSchema, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// FetchProfile fetches a user's profile info
func (c *Client) FetchProfile(uid string) (*RawUser, error) {
	url := ProfileURL(c.baseURL, uid)

	var resp ProfileResponse
	if err := c.getJSON(url, &resp); err != nil {
		return nil, err
	}

	if resp.Ok != 1 || resp.Data == nil {
		return nil, apierr.New(apierr.KindSchema, http.StatusOK, "profile response not ok for uid %s", uid)
	}

	return &resp.Data.User, nil
}

// FetchTimelinePage fetches one page of a user's posts, trying each
// endpoint template in order until one returns a usable response. A
// usable response has status 200, ok == 1 and a data payload with a
// list field. HTTP 414 means the template is structurally unusable
// for this id and advances to the next template, as does any other
// failure. When every template is exhausted the distinguished
// ErrAllEndpointsFailed is returned with an empty list and zero total.
func (c *Client) FetchTimelinePage(uid string, page, count int) ([]RawPost, int, error) {
	templates := TimelineURLs(c.baseURL, uid, page, count)

	for i, url := range templates {
		var resp TimelineResponse
		apiErr := c.getJSON(url, &resp)
		if apiErr != nil {
			if apiErr.Kind == apierr.KindTooLong {
				c.logger.DebugWithFields("endpoint template unusable for id, trying next", map[string]interface{}{
					"uid":      uid,
					"template": i + 1,
				})
			} else {
				c.logger.WarnWithFields("timeline fetch failed, trying next template", map[string]interface{}{
					"uid":      uid,
					"template": i + 1,
					"kind":     string(apiErr.Kind),
					"error":    apiErr.Message,
				})
			}
			continue
		}

		if resp.Ok != 1 || resp.Data == nil || resp.Data.List == nil {
			c.logger.WarnWithFields("timeline response not usable, trying next template", map[string]interface{}{
				"uid":      uid,
				"template": i + 1,
				"ok":       resp.Ok,
			})
			continue
		}

		c.logger.DebugWithFields("timeline page fetched", map[string]interface{}{
			"uid":   uid,
			"page":  page,
			"posts": len(resp.Data.List),
			"total": resp.Data.Total,
		})
		return resp.Data.List, resp.Data.Total, nil
	}

	c.logger.WarnWithFields("all timeline endpoints failed", map[string]interface{}{
		"uid":  uid,
		"page": page,
	})
	return nil, 0, ErrAllEndpointsFailed
}

// FetchComments fetches one bounded batch of comments for a post.
// There is no pagination: the API returns a single batch ordered by
// recency. Failures surface as errors; the caller isolates them to an
// empty comment list and keeps the parent post.
func (c *Client) FetchComments(postID string, count int) ([]RawComment, error) {
	url := CommentsURL(c.baseURL, postID, count)

	var resp CommentsResponse
	if err := c.getJSON(url, &resp); err != nil {
		return nil, err
	}

	if resp.Ok != 1 {
		return nil, apierr.New(apierr.KindSchema, http.StatusOK, "comments response not ok for post %s", postID)
	}

	return resp.Data, nil
}

// FetchFriendsPage fetches one page of a user's friend list for seed
// collection.
func (c *Client) FetchFriendsPage(uid string, page, count int) ([]RawUser, error) {
	url := FriendsURL(c.baseURL, uid, page, count)

	var resp FriendsResponse
	if err := c.getJSON(url, &resp); err != nil {
		return nil, err
	}

	return resp.Users, nil
}
