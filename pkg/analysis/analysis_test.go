package analysis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weibocrawl/pkg/corpus"
	"weibocrawl/pkg/logger"
)

func postAt(text string, year int, month time.Month) corpus.Post {
	t := time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	return corpus.Post{ID: "1", Text: text, CreatedAtParsed: &t, Comments: []corpus.Comment{}}
}

func TestMonthlyKeywordCounts(t *testing.T) {
	posts := []corpus.Post{
		postAt("疫苗接种进展顺利", 2021, time.March),
		postAt("今天聊疫苗，还是疫苗", 2021, time.March),
		postAt("口罩供应充足", 2021, time.April),
		{ID: "4", Text: "疫苗新闻", Comments: []corpus.Comment{}},
	}

	counts := MonthlyKeywordCounts(posts, []string{"疫苗", "口罩"})

	assert.Equal(t, 2, counts["2021-03"]["疫苗"], "a post counts once per keyword")
	assert.Equal(t, 0, counts["2021-03"]["口罩"])
	assert.Equal(t, 1, counts["2021-04"]["口罩"])
	assert.Equal(t, 1, counts["unknown"]["疫苗"], "unparsed timestamps bucket as unknown")
}

func TestMonthlyKeywordCountsSearchesRepostText(t *testing.T) {
	p := postAt("转发一下", 2021, time.May)
	p.Repost = &corpus.Repost{Author: "src", Text: "疫苗相关内容"}

	counts := MonthlyKeywordCounts([]corpus.Post{p}, []string{"疫苗"})
	assert.Equal(t, 1, counts["2021-05"]["疫苗"])
}

func TestCooccurrence(t *testing.T) {
	posts := []corpus.Post{
		postAt("疫苗和口罩都要", 2021, time.March),
		postAt("只说疫苗", 2021, time.March),
		postAt("只说口罩", 2021, time.April),
	}
	keywords := []string{"疫苗", "口罩"}

	m := Cooccurrence(posts, keywords)

	require.Len(t, m, 2)
	assert.Equal(t, 2, m[0][0], "diagonal holds mention counts")
	assert.Equal(t, 2, m[1][1])
	assert.Equal(t, 1, m[0][1])
	assert.Equal(t, m[0][1], m[1][0], "matrix is symmetric")
}

func TestTopHashtags(t *testing.T) {
	posts := []corpus.Post{
		postAt("#春运#开始了 #天气#", 2021, time.January),
		postAt("#春运#太挤 #not closed", 2021, time.January),
		postAt("#天气#不错", 2021, time.February),
	}

	tags := TopHashtags(posts, 10)

	require.Len(t, tags, 2, "unclosed hashtags are ignored")
	assert.Equal(t, HashtagCount{Tag: "天气", Count: 2}, tags[0], "ties break alphabetically")
	assert.Equal(t, HashtagCount{Tag: "春运", Count: 2}, tags[1])
}

func TestTopHashtagsLimit(t *testing.T) {
	posts := []corpus.Post{
		postAt("#a# #a# #a# #b# #b# #c#", 2021, time.January),
	}

	tags := TopHashtags(posts, 2)
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].Tag)
	assert.Equal(t, "b", tags[1].Tag)
}

func TestWriteMonthlyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.csv")
	counts := map[string]map[string]int{
		"2021-04": {"口罩": 1},
		"2021-03": {"疫苗": 2},
	}

	require.NoError(t, WriteMonthlyCSV(path, []string{"疫苗", "口罩"}, counts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "month,疫苗,口罩\n2021-03,2,0\n2021-04,0,1\n", string(data))
}

func TestWriteCooccurrenceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooc.csv")
	matrix := [][]int{{2, 1}, {1, 3}}

	require.NoError(t, WriteCooccurrenceCSV(path, []string{"a", "b"}, matrix))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ",a,b\na,2,1\nb,1,3\n", string(data))
}

func TestWriteCooccurrenceCSVSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooc.csv")
	err := WriteCooccurrenceCSV(path, []string{"a", "b"}, [][]int{{1}})
	require.Error(t, err)
}

func TestWriteHashtagsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.csv")
	tags := []HashtagCount{{Tag: "春运", Count: 3}, {Tag: "天气", Count: 1}}

	require.NoError(t, WriteHashtagsCSV(path, tags))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hashtag,count\n春运,3\n天气,1\n", string(data))
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	posts := []corpus.Post{
		postAt("#春运#期间注意疫苗接种", 2021, time.January),
		postAt("日常内容", 2021, time.February),
	}
	require.NoError(t, corpus.WriteFile(corpusPath, posts, logger.NewTestLogger()))

	outDir := filepath.Join(dir, "reports")
	n, err := Report(corpusPath, []string{"疫苗"}, 10, outDir, logger.NewTestLogger())

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stamp := time.Now().Format("20060102")
	for _, name := range []string{
		"keyword_trends_" + stamp + ".csv",
		"keyword_cooccurrence_" + stamp + ".csv",
		"hashtags_" + stamp + ".csv",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "expected report file %s", name)
	}
}

func TestReportNoKeywords(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	require.NoError(t, corpus.WriteFile(corpusPath, []corpus.Post{
		postAt("#话题#内容", 2021, time.January),
	}, logger.NewTestLogger()))

	n, err := Report(corpusPath, nil, 10, dir, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stamp := time.Now().Format("20060102")
	_, err = os.Stat(filepath.Join(dir, "keyword_trends_"+stamp+".csv"))
	assert.True(t, os.IsNotExist(err), "trend report is skipped without keywords")
}

func TestReportEmptyCorpus(t *testing.T) {
	_, err := Report(filepath.Join(t.TempDir(), "missing.txt"), nil, 10, t.TempDir(), logger.NewTestLogger())
	require.Error(t, err)
}
