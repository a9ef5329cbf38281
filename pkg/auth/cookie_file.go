package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"weibocrawl/pkg/config"
)

// cookiePair is one entry in a browser-exported cookie JSON file
type cookiePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookieFile reads a cookie file and returns a Cookie header
// value. Two formats are accepted: a JSON array of {name, value}
// objects as exported by browser extensions, or a plain text file
// whose whole content is the cookie string.
func LoadCookieFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read cookie file: %w", err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("cookie file %s is empty", path)
	}

	var pairs []cookiePair
	if err := json.Unmarshal([]byte(trimmed), &pairs); err == nil {
		var parts []string
		for _, p := range pairs {
			if p.Name == "" {
				continue
			}
			parts = append(parts, p.Name+"="+p.Value)
		}
		if len(parts) == 0 {
			return "", fmt.Errorf("cookie file %s contains no usable cookies", path)
		}
		return strings.Join(parts, "; "), nil
	}

	return trimmed, nil
}

// ResolveCookie picks the session cookie for a crawl run. Precedence:
// an explicit cookie in cfg, then a cookie file, then the stored
// credential chain. The resolved value is written back into cfg so the
// session is fixed before any request is made.
func ResolveCookie(cfg *config.Config) error {
	if cfg.Weibo.Cookie != "" {
		return nil
	}

	if cfg.Weibo.CookieFile != "" {
		cookie, err := LoadCookieFile(cfg.Weibo.CookieFile)
		if err != nil {
			return err
		}
		cfg.Weibo.Cookie = cookie
		return nil
	}

	manager, err := NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	account, err := manager.RetrieveDefault()
	if err != nil {
		return fmt.Errorf("no cookie configured: set --cookie, --cookie-file or run 'weibocrawl auth login': %w", err)
	}

	cfg.Weibo.Cookie = account.Cookie
	if account.UserAgent != "" {
		cfg.Weibo.UserAgent = account.UserAgent
	}
	return nil
}
