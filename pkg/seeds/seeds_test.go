package seeds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weibocrawl/pkg/apierr"
	"weibocrawl/pkg/config"
	"weibocrawl/pkg/logger"
	"weibocrawl/pkg/weibo"
)

// stubFriends serves canned friend pages and can inject failures on
// specific (page, call) combinations.
type stubFriends struct {
	pages    map[int][]weibo.RawUser
	failures map[int]int // page -> number of failing calls before success
	err      error
	calls    int
}

func (s *stubFriends) FetchFriendsPage(uid string, page, count int) ([]weibo.RawUser, error) {
	s.calls++
	if n, ok := s.failures[page]; ok && n > 0 {
		s.failures[page] = n - 1
		return nil, s.err
	}
	return s.pages[page], nil
}

func user(id string) weibo.RawUser {
	return weibo.RawUser{IDStr: id, ScreenName: "user-" + id}
}

func testCollectorConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Crawl.PageDelay = 0
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = config.Duration(time.Millisecond)
	cfg.Retry.MaxDelay = config.Duration(time.Millisecond)
	return cfg
}

func newTestCollector(t *testing.T, stub *stubFriends) *Collector {
	t.Helper()
	return NewCollector(stub, testCollectorConfig(), logger.NewTestLogger())
}

func TestCollectUntilEmptyPage(t *testing.T) {
	stub := &stubFriends{pages: map[int][]weibo.RawUser{
		1: {user("1"), user("2")},
		2: {user("3")},
	}}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, 3, stub.calls, "stops on the first empty page")
}

func TestCollectDeduplicates(t *testing.T) {
	stub := &stubFriends{pages: map[int][]weibo.RawUser{
		1: {user("1"), user("2"), user("1")},
		2: {user("2"), user("3")},
	}}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids, "first-seen order preserved")
}

func TestCollectMaxCount(t *testing.T) {
	stub := &stubFriends{pages: map[int][]weibo.RawUser{
		1: {user("1"), user("2"), user("3")},
		2: {user("4")},
	}}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.Equal(t, 1, stub.calls, "stops mid-page, does not fetch further")
}

func TestCollectNumericIDFallback(t *testing.T) {
	stub := &stubFriends{pages: map[int][]weibo.RawUser{
		1: {{ID: 12345}, {IDStr: "67890"}, {}},
	}}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"12345", "67890"}, ids, "users with no id are skipped")
}

func TestCollectRetriesTransientFailures(t *testing.T) {
	stub := &stubFriends{
		pages: map[int][]weibo.RawUser{
			1: {user("1")},
		},
		failures: map[int]int{1: 2},
		err:      apierr.New(apierr.KindServer, 500, "flaky"),
	}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
	assert.Equal(t, 4, stub.calls, "2 failures, 1 success, 1 empty page")
}

func TestCollectBoundedRetryAborts(t *testing.T) {
	stub := &stubFriends{
		pages: map[int][]weibo.RawUser{
			1: {user("1"), user("2")},
		},
		failures: map[int]int{2: 10},
		err:      apierr.New(apierr.KindServer, 500, "down"),
	}

	c := newTestCollector(t, stub)
	ids, err := c.Collect("100", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "friends page 2 failed")
	assert.Equal(t, []string{"1", "2"}, ids, "ids gathered so far are returned")
	assert.Equal(t, 4, stub.calls, "page 1 once, page 2 three bounded attempts")
}

func TestCollectNonRetryableFailsFast(t *testing.T) {
	stub := &stubFriends{
		failures: map[int]int{1: 10},
		err:      apierr.New(apierr.KindAuth, 403, "cookie rejected"),
	}

	c := newTestCollector(t, stub)
	_, err := c.Collect("100", 0)

	require.Error(t, err)
	assert.Equal(t, 1, stub.calls, "auth failures are not retried")
}

func TestCollectEmptySeed(t *testing.T) {
	c := newTestCollector(t, &stubFriends{})
	_, err := c.Collect("", 0)
	require.Error(t, err)
}

func TestCollectToFile(t *testing.T) {
	stub := &stubFriends{pages: map[int][]weibo.RawUser{
		1: {user("1"), user("2")},
	}}
	path := filepath.Join(t.TempDir(), "ids.txt")

	c := newTestCollector(t, stub)
	n, err := c.CollectToFile("100", 0, path)

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", string(data))
}

func TestLoadUserIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	content := "# seed list\n1001\n\n  1002  \n#commented\n1003\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ids, err := LoadUserIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002", "1003"}, ids)
}

func TestLoadUserIDsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n\n"), 0644))

	_, err := LoadUserIDs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user ids found")
}

func TestLoadUserIDsMissingFile(t *testing.T) {
	_, err := LoadUserIDs(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	want := []string{"1", "2", "3"}

	require.NoError(t, SaveUserIDs(path, want))
	got, err := LoadUserIDs(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
