package weibo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineURLs(t *testing.T) {
	urls := TimelineURLs(BaseURL, "1001", 2, 20)

	assert.Len(t, urls, 5)
	assert.Equal(t, "https://weibo.com/ajax/statuses/mymblog?uid=1001&page=2&count=20", urls[0])
	assert.Equal(t, "https://weibo.com/ajax/statuses/mymblog?uid=1001&page=2", urls[1])
	assert.Equal(t, "https://weibo.com/ajax/statuses/mymblog?uid=1001", urls[2])
	assert.Equal(t, "https://weibo.com/ajax/statuses/user_timeline?uid=1001&page=2&count=20", urls[3])
	assert.Equal(t, "https://weibo.com/ajax/statuses/user_timeline?uid=1001&page=2", urls[4])

	// Most specific templates come first
	for i := 0; i < 3; i++ {
		assert.Contains(t, urls[i], MymblogEndpoint)
	}
	for i := 3; i < 5; i++ {
		assert.Contains(t, urls[i], TimelineEndpoint)
	}
}

func TestProfileURL(t *testing.T) {
	url := ProfileURL(BaseURL, "1001")
	assert.Equal(t, "https://weibo.com/ajax/profile/info?uid=1001", url)
}

func TestCommentsURL(t *testing.T) {
	url := CommentsURL(BaseURL, "999", 10)
	assert.True(t, strings.HasPrefix(url, "https://weibo.com/ajax/statuses/buildComments?"))
	assert.Contains(t, url, "id=999")
	assert.Contains(t, url, "count=10")
	assert.Contains(t, url, "is_reload=1")

	// Non-positive count falls back to the default batch size
	assert.Contains(t, CommentsURL(BaseURL, "999", 0), "count=10")
}

func TestFriendsURL(t *testing.T) {
	url := FriendsURL(BaseURL, "1001", 3, 20)
	assert.Contains(t, url, FriendsEndpoint)
	assert.Contains(t, url, "uid=1001")
	assert.Contains(t, url, "page=3")
	assert.Contains(t, url, "count=20")
}
