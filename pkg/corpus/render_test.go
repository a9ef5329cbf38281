package corpus

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weibocrawl/pkg/logger"
)

func TestRenderPost(t *testing.T) {
	created := time.Date(2025, time.December, 3, 10, 0, 0, 0, time.UTC)
	p := Post{
		ID:              "1",
		Author:          "作者",
		CreatedAtParsed: &created,
		Text:            "正文内容",
		Comments: []Comment{
			{Author: "alice", Text: "第一条"},
			{Author: "bob", Text: "第二条"},
		},
	}

	block := RenderPost(&p)
	assert.Contains(t, block, "【用户】作者")
	assert.Contains(t, block, "【发布时间】2025-12-03 10:00:00")
	assert.Contains(t, block, "【内容】\n正文内容")
	assert.Contains(t, block, "【评论】")
	assert.Contains(t, block, "1. alice：第一条")
	assert.Contains(t, block, "2. bob：第二条")
	assert.True(t, strings.HasSuffix(block, renderSeparator+"\n"))
	assert.NotContains(t, block, "转发")
}

func TestRenderPostFallbacks(t *testing.T) {
	t.Run("missing author and time", func(t *testing.T) {
		block := RenderPost(&Post{Text: "x"})
		assert.Contains(t, block, "【用户】未知用户")
		assert.Contains(t, block, "【发布时间】未知时间")
	})

	t.Run("raw time kept when unparsed", func(t *testing.T) {
		block := RenderPost(&Post{CreatedAt: "someday"})
		assert.Contains(t, block, "【发布时间】someday")
	})

	t.Run("repost block", func(t *testing.T) {
		p := Post{
			Author: "转发者",
			Text:   "评语",
			Repost: &Repost{Author: "原作者", Text: "原文"},
		}
		block := RenderPost(&p)
		assert.Contains(t, block, "转发 @原作者: 原文")
	})
}

func TestRenderHeader(t *testing.T) {
	when := time.Date(2026, time.September, 1, 12, 30, 0, 0, time.UTC)
	header := RenderHeader("昵称", "1001", 42, when)

	assert.Contains(t, header, "用户: 昵称 (ID: 1001)")
	assert.Contains(t, header, "爬取时间: 2026-09-01 12:30:00")
	assert.Contains(t, header, "微博数量: 42")
	assert.Contains(t, header, strings.Repeat("=", 50))
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	outPath := filepath.Join(dir, "readable.txt")

	posts := []Post{
		{ID: "1", Author: "a", Text: "one", Comments: []Comment{}},
		{ID: "2", Author: "b", Text: "two", Comments: []Comment{}},
	}
	require.NoError(t, WriteFile(corpusPath, posts, logger.NewTestLogger()))

	count, err := RenderFile(corpusPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var buf bytes.Buffer
	rendered, _, err := ReadFile(corpusPath)
	require.NoError(t, err)
	require.NoError(t, Render(&buf, rendered))
	assert.Equal(t, 2, strings.Count(buf.String(), renderSeparator))
}
