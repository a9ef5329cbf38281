package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const renderSeparator = "----------------------------------------"

// displayTime returns the human-readable timestamp for a post,
// preferring the parsed time and falling back to the raw API string.
func displayTime(p *Post) string {
	if p.CreatedAtParsed != nil {
		return p.CreatedAtParsed.Format("2006-01-02 15:04:05")
	}
	if p.CreatedAt != "" {
		return p.CreatedAt
	}
	return "未知时间"
}

// RenderPost renders one post as a human-readable block: author,
// timestamp, cleaned text, optional repost block, numbered comments
// and a separator line.
func RenderPost(p *Post) string {
	var b strings.Builder

	author := p.Author
	if author == "" {
		author = "未知用户"
	}

	fmt.Fprintf(&b, "【用户】%s\n", author)
	fmt.Fprintf(&b, "【发布时间】%s\n", displayTime(p))
	fmt.Fprintf(&b, "【内容】\n%s\n", p.Text)

	if p.Repost != nil {
		repostAuthor := p.Repost.Author
		if repostAuthor == "" {
			repostAuthor = "未知用户"
		}
		fmt.Fprintf(&b, "\n转发 @%s: %s\n", repostAuthor, p.Repost.Text)
	}

	b.WriteString("\n【评论】\n")
	for i, c := range p.Comments {
		fmt.Fprintf(&b, "%d. %s：%s\n", i+1, c.Author, c.Text)
	}

	b.WriteString(renderSeparator + "\n")
	return b.String()
}

// RenderHeader renders the header block for a single-user crawl file
func RenderHeader(screenName, uid string, count int, when time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "用户: %s (ID: %s)\n", screenName, uid)
	fmt.Fprintf(&b, "爬取时间: %s\n", when.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "微博数量: %d\n", count)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	return b.String()
}

// Render writes readable blocks for all posts to w
func Render(w io.Writer, posts []Post) error {
	for i := range posts {
		if _, err := io.WriteString(w, RenderPost(&posts[i])); err != nil {
			return err
		}
	}
	return nil
}

// RenderFile reads a jsonl corpus and writes the readable rendering.
// Malformed corpus lines are skipped, never fatal.
func RenderFile(corpusPath, outPath string) (int, error) {
	posts, _, err := ReadFile(corpusPath)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create readable file: %w", err)
	}
	defer f.Close()

	if err := Render(f, posts); err != nil {
		return 0, fmt.Errorf("failed to render posts: %w", err)
	}
	return len(posts), nil
}
