package corpus

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weibocrawl/pkg/logger"
)

func TestWriterWritePost(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, logger.NewTestLogger())

	p := Post{ID: "1", Author: "作者", Text: "你好", Comments: []Comment{}}
	require.NoError(t, w.WritePost(&p))
	require.NoError(t, w.Flush())

	line := strings.TrimSpace(buf.String())
	assert.NotContains(t, line, "\n")

	var decoded Post
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "1", decoded.ID)
	assert.Equal(t, "作者", decoded.Author)
	// Chinese text stays readable, not escaped into \uXXXX
	assert.Contains(t, line, "你好")
}

func TestWriterErrorRecordSubstitution(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewTestLogger()
	w := NewWriter(&buf, log)

	// Channels cannot be marshalled, forcing the substitution path
	bad := map[string]interface{}{"ch": make(chan int)}
	require.NoError(t, w.WriteRecord("4567", bad))
	require.NoError(t, w.Flush())

	var rec map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "4567", rec["id"])
	assert.NotEmpty(t, rec["error"])

	assert.True(t, log.HasMessage("WARN", "failed to serialize record"))
}

func TestWriterRecordsAreIndependent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, logger.NewTestLogger())

	require.NoError(t, w.WritePost(&Post{ID: "1", Text: "first", Comments: []Comment{}}))
	require.NoError(t, w.WriteRecord("2", map[string]interface{}{"ch": make(chan int)}))
	require.NoError(t, w.WritePost(&Post{ID: "3", Text: "third", Comments: []Comment{}}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)))
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")

	posts := []Post{
		{ID: "1", Author: "a", Text: "один", Comments: []Comment{}},
		{ID: "2", Author: "b", Text: "два", Comments: []Comment{{Author: "c", Text: "评论", LikeCount: 1}}},
	}
	require.NoError(t, WriteFile(path, posts, logger.NewTestLogger()))

	got, skipped, err := ReadFile(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, posts[0].ID, got[0].ID)
	assert.Equal(t, posts[1].Comments, got[1].Comments)
}

func TestReadAllSkipsBadLines(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"1","text":"ok","comments":[]}`,
		``,
		`not json at all`,
		`{"text":"missing id","comments":[]}`,
		`{"id":"2","text":"also ok","comments":[]}`,
	}, "\n")

	posts, skipped, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, posts, 2)
	assert.Equal(t, "1", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestErrorRecordsReadBackAsSkeletonPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := NewWriter(f, logger.NewTestLogger())
	require.NoError(t, w.WriteRecord("777", map[string]interface{}{"ch": make(chan int)}))
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())

	posts, skipped, err := ReadFile(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, posts, 1)
	assert.Equal(t, "777", posts[0].ID)
	assert.Empty(t, posts[0].Text)
}
