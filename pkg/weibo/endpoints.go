package weibo

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the default base URL for the Weibo web API
	BaseURL = "https://weibo.com"

	// ProfileEndpoint returns a user's profile info
	ProfileEndpoint = "/ajax/profile/info"

	// MymblogEndpoint is the primary timeline listing endpoint
	MymblogEndpoint = "/ajax/statuses/mymblog"

	// TimelineEndpoint is the fallback timeline listing endpoint
	TimelineEndpoint = "/ajax/statuses/user_timeline"

	// CommentsEndpoint returns one bounded batch of comments for a post
	CommentsEndpoint = "/ajax/statuses/buildComments"

	// FriendsEndpoint lists a user's friends for seed collection
	FriendsEndpoint = "/ajax/friendships/friends"

	// DefaultPageSize is the page size the timeline API serves by default
	DefaultPageSize = 20

	// DefaultCommentCount is the comment batch size requested per post
	DefaultCommentCount = 10
)

// TimelineURLs returns the candidate URLs for one timeline page, most
// to least specific. The resolver tries them in this order until one
// yields a usable response.
func TimelineURLs(baseURL, uid string, page, count int) []string {
	return []string{
		fmt.Sprintf("%s%s?uid=%s&page=%d&count=%d", baseURL, MymblogEndpoint, uid, page, count),
		fmt.Sprintf("%s%s?uid=%s&page=%d", baseURL, MymblogEndpoint, uid, page),
		fmt.Sprintf("%s%s?uid=%s", baseURL, MymblogEndpoint, uid),
		fmt.Sprintf("%s%s?uid=%s&page=%d&count=%d", baseURL, TimelineEndpoint, uid, page, count),
		fmt.Sprintf("%s%s?uid=%s&page=%d", baseURL, TimelineEndpoint, uid, page),
	}
}

// ProfileURL constructs the URL for fetching a user's profile
func ProfileURL(baseURL, uid string) string {
	params := url.Values{}
	params.Set("uid", uid)
	return fmt.Sprintf("%s%s?%s", baseURL, ProfileEndpoint, params.Encode())
}

// CommentsURL constructs the URL for fetching one comment batch
func CommentsURL(baseURL, postID string, count int) string {
	if count <= 0 {
		count = DefaultCommentCount
	}
	return fmt.Sprintf("%s%s?is_reload=1&id=%s&is_show_bulletin=2&is_mix=0&count=%d",
		baseURL, CommentsEndpoint, postID, count)
}

// FriendsURL constructs the URL for one page of a user's friend list
func FriendsURL(baseURL, uid string, page, count int) string {
	params := url.Values{}
	params.Set("uid", uid)
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("count", fmt.Sprintf("%d", count))
	return fmt.Sprintf("%s%s?%s", baseURL, FriendsEndpoint, params.Encode())
}
