// Package analysis computes keyword and hashtag statistics over a
// crawled corpus and writes them as CSV reports.
package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"weibocrawl/pkg/corpus"
	"weibocrawl/pkg/logger"
)

// hashtagPattern matches Weibo-style hashtags, #topic# with the
// closing marker required.
var hashtagPattern = regexp.MustCompile(`#([^#\s]+)#`)

const unknownMonth = "unknown"

// HashtagCount is one row of the hashtag frequency report
type HashtagCount struct {
	Tag   string
	Count int
}

// postMonth buckets a post by calendar month of its creation time.
// Posts whose timestamp never parsed fall into the "unknown" bucket.
func postMonth(p *corpus.Post) string {
	if p.CreatedAtParsed != nil {
		return p.CreatedAtParsed.Format("2006-01")
	}
	return unknownMonth
}

// postText is the searchable text of a post: its own cleaned text plus
// the embedded repost text, if any.
func postText(p *corpus.Post) string {
	if p.Repost == nil {
		return p.Text
	}
	return p.Text + " " + p.Repost.Text
}

// MonthlyKeywordCounts counts, per calendar month, how many posts
// mention each keyword. A post counts once per keyword no matter how
// often the keyword repeats inside it.
func MonthlyKeywordCounts(posts []corpus.Post, keywords []string) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for i := range posts {
		month := postMonth(&posts[i])
		text := postText(&posts[i])
		for _, kw := range keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			if counts[month] == nil {
				counts[month] = make(map[string]int)
			}
			counts[month][kw]++
		}
	}
	return counts
}

// Cooccurrence counts, for every keyword pair, how many posts mention
// both. The result is a symmetric matrix indexed like keywords; the
// diagonal holds plain mention counts.
func Cooccurrence(posts []corpus.Post, keywords []string) [][]int {
	matrix := make([][]int, len(keywords))
	for i := range matrix {
		matrix[i] = make([]int, len(keywords))
	}

	for p := range posts {
		text := postText(&posts[p])
		var present []int
		for i, kw := range keywords {
			if strings.Contains(text, kw) {
				present = append(present, i)
			}
		}
		for _, i := range present {
			for _, j := range present {
				matrix[i][j]++
			}
		}
	}
	return matrix
}

// TopHashtags extracts #tag# hashtags from all posts and returns the n
// most frequent, ties broken alphabetically.
func TopHashtags(posts []corpus.Post, n int) []HashtagCount {
	freq := make(map[string]int)
	for i := range posts {
		for _, m := range hashtagPattern.FindAllStringSubmatch(postText(&posts[i]), -1) {
			freq[m[1]]++
		}
	}

	tags := make([]HashtagCount, 0, len(freq))
	for tag, count := range freq {
		tags = append(tags, HashtagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	if n > 0 && len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// WriteMonthlyCSV writes the monthly keyword counts with months as
// rows in ascending order and one column per keyword.
func WriteMonthlyCSV(path string, keywords []string, counts map[string]map[string]int) error {
	months := make([]string, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Strings(months)

	return writeCSV(path, func(w *csv.Writer) error {
		header := append([]string{"month"}, keywords...)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, month := range months {
			row := make([]string, 0, len(keywords)+1)
			row = append(row, month)
			for _, kw := range keywords {
				row = append(row, strconv.Itoa(counts[month][kw]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCooccurrenceCSV writes the keyword co-occurrence matrix with a
// keyword header row and a keyword label column.
func WriteCooccurrenceCSV(path string, keywords []string, matrix [][]int) error {
	if len(matrix) != len(keywords) {
		return fmt.Errorf("matrix size %d does not match keyword count %d", len(matrix), len(keywords))
	}

	return writeCSV(path, func(w *csv.Writer) error {
		header := append([]string{""}, keywords...)
		if err := w.Write(header); err != nil {
			return err
		}
		for i, kw := range keywords {
			row := make([]string, 0, len(keywords)+1)
			row = append(row, kw)
			for _, v := range matrix[i] {
				row = append(row, strconv.Itoa(v))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteHashtagsCSV writes hashtag frequencies, most frequent first
func WriteHashtagsCSV(path string, tags []HashtagCount) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"hashtag", "count"}); err != nil {
			return err
		}
		for _, t := range tags {
			if err := w.Write([]string{t.Tag, strconv.Itoa(t.Count)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// Report runs the full analysis over a corpus file and writes the
// keyword trend, co-occurrence and hashtag CSVs into outDir. Returns
// the number of posts analyzed.
func Report(corpusPath string, keywords []string, topN int, outDir string, log logger.Logger) (int, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	posts, skipped, err := corpus.ReadFile(corpusPath)
	if err != nil {
		return 0, err
	}
	if skipped > 0 {
		log.WarnWithFields("skipped unreadable corpus records", map[string]interface{}{
			"skipped": skipped,
		})
	}
	if len(posts) == 0 {
		return 0, fmt.Errorf("corpus %s contains no posts", corpusPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := time.Now().Format("20060102")

	if len(keywords) > 0 {
		counts := MonthlyKeywordCounts(posts, keywords)
		trendPath := filepath.Join(outDir, fmt.Sprintf("keyword_trends_%s.csv", stamp))
		if err := WriteMonthlyCSV(trendPath, keywords, counts); err != nil {
			return 0, err
		}

		matrix := Cooccurrence(posts, keywords)
		coocPath := filepath.Join(outDir, fmt.Sprintf("keyword_cooccurrence_%s.csv", stamp))
		if err := WriteCooccurrenceCSV(coocPath, keywords, matrix); err != nil {
			return 0, err
		}
	}

	tags := TopHashtags(posts, topN)
	tagPath := filepath.Join(outDir, fmt.Sprintf("hashtags_%s.csv", stamp))
	if err := WriteHashtagsCSV(tagPath, tags); err != nil {
		return 0, err
	}

	log.InfoWithFields("analysis complete", map[string]interface{}{
		"posts":    len(posts),
		"keywords": len(keywords),
		"hashtags": len(tags),
		"out_dir":  outDir,
	})
	return len(posts), nil
}
