// Package corpus defines the normalized post records the crawler
// accumulates and their newline-delimited JSON persistence.
package corpus

import (
	"strconv"
	"time"

	"weibocrawl/pkg/normalize"
	"weibocrawl/pkg/weibo"
)

// Comment is a normalized comment owned by exactly one Post. Ordering
// is as returned by the API.
type Comment struct {
	Author    string `json:"user"`
	Text      string `json:"text"`
	LikeCount int    `json:"like_count"`
}

// Repost is a reduced snapshot of a reposted post: author name plus
// cleaned text, exclusively owned by the embedding Post. It is not a
// graph edge.
type Repost struct {
	Author string `json:"user"`
	Text   string `json:"text"`
}

// Post is a fully-populated normalized post record. Every field has an
// explicit default so downstream consumers never re-check for absence.
// Text is always derived from the raw text by normalize.Clean.
type Post struct {
	ID              string     `json:"id"`
	Author          string     `json:"user"`
	CreatedAt       string     `json:"created_at"`
	CreatedAtParsed *time.Time `json:"created_at_parsed,omitempty"`
	TextRaw         string     `json:"text_raw"`
	Text            string     `json:"text"`
	RepostsCount    int        `json:"reposts_count"`
	CommentsCount   int        `json:"comments_count"`
	AttitudesCount  int        `json:"attitudes_count"`
	Repost          *Repost    `json:"retweeted,omitempty"`
	Comments        []Comment  `json:"comments"`
}

// NewPost builds a normalized Post from a raw API entry. This is the
// single normalization step: missing fields become empty strings or
// zero counts here, never downstream.
func NewPost(raw *weibo.RawPost) Post {
	p := Post{
		ID:             postID(raw),
		CreatedAt:      raw.CreatedAt,
		TextRaw:        raw.TextRaw,
		RepostsCount:   raw.RepostsCount,
		CommentsCount:  raw.CommentsCount,
		AttitudesCount: raw.AttitudesCount,
		Comments:       []Comment{},
	}

	if raw.User != nil {
		p.Author = raw.User.ScreenName
	}

	source := raw.Text
	if source == "" {
		source = raw.TextRaw
	}
	p.Text = normalize.Clean(source)
	if p.TextRaw == "" {
		p.TextRaw = raw.Text
	}

	if t, ok := normalize.ParseCreatedAt(raw.CreatedAt); ok {
		p.CreatedAtParsed = &t
	}

	if raw.RetweetedStatus != nil {
		snapshot := &Repost{
			Text: normalize.Clean(raw.RetweetedStatus.Text),
		}
		if raw.RetweetedStatus.User != nil {
			snapshot.Author = raw.RetweetedStatus.User.ScreenName
		}
		p.Repost = snapshot
	}

	return p
}

// NewComment builds a normalized Comment from a raw API entry
func NewComment(raw weibo.RawComment) Comment {
	c := Comment{
		Text:      normalize.Clean(raw.Text),
		LikeCount: raw.LikeCount,
	}
	if raw.User != nil {
		c.Author = raw.User.ScreenName
	}
	return c
}

// postID picks the best available id representation for a raw post
func postID(raw *weibo.RawPost) string {
	switch {
	case raw.IDStr != "":
		return raw.IDStr
	case raw.ID != 0:
		return strconv.FormatInt(raw.ID, 10)
	default:
		return raw.MblogID
	}
}
