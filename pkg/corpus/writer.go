package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"weibocrawl/pkg/logger"
)

// errorRecord is substituted for a post whose serialization failed, so
// one bad record never aborts the rest of the corpus.
type errorRecord struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Writer serializes posts as newline-delimited JSON, one record per
// line, UTF-8, no enclosing array. The format is chosen so a single
// malformed record never invalidates the rest of the file and the
// corpus can be appended incrementally.
type Writer struct {
	w      *bufio.Writer
	logger logger.Logger
}

// NewWriter creates a corpus writer on top of w
func NewWriter(w io.Writer, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{
		w:      bufio.NewWriter(w),
		logger: log,
	}
}

// WriteRecord serializes one record as a single line. If the record
// cannot be marshalled, a minimal error record carrying the id is
// written in its place and writing continues. The returned error is
// only ever an I/O failure of the underlying writer.
func (w *Writer) WriteRecord(id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		w.logger.WarnWithFields("failed to serialize record, writing error record", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		data, err = json.Marshal(errorRecord{ID: id, Error: err.Error()})
		if err != nil {
			return fmt.Errorf("failed to serialize error record: %w", err)
		}
	}

	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// WritePost serializes one post as a single line
func (w *Writer) WritePost(p *Post) error {
	return w.WriteRecord(p.ID, p)
}

// Flush flushes buffered records to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteFile writes all posts to path as newline-delimited JSON
func WriteFile(path string, posts []Post, log logger.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer f.Close()

	w := NewWriter(f, log)
	for i := range posts {
		if err := w.WritePost(&posts[i]); err != nil {
			return fmt.Errorf("failed to write corpus record: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus file: %w", err)
	}
	return nil
}

// maxLineSize bounds a single corpus line when reading back
const maxLineSize = 1024 * 1024

// ReadAll reads back a newline-delimited corpus. Blank lines and
// malformed records are skipped, mirroring the writer's per-record
// isolation; the number of skipped lines is returned.
func ReadAll(r io.Reader) ([]Post, int, error) {
	var posts []Post
	skipped := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p Post
		if err := json.Unmarshal(line, &p); err != nil || p.ID == "" {
			skipped++
			continue
		}
		posts = append(posts, p)
	}

	if err := scanner.Err(); err != nil {
		return posts, skipped, fmt.Errorf("failed to read corpus: %w", err)
	}
	return posts, skipped, nil
}

// ReadFile reads a corpus file from path
func ReadFile(path string) ([]Post, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	return ReadAll(f)
}
