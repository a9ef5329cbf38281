package weibo

// RawUser is a user object as returned by the Weibo API
type RawUser struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"idstr"`
	ScreenName string `json:"screen_name"`
}

// RawPost is a post (mblog) entry as returned by the timeline API.
// Fields may be absent in the payload; normalization fills defaults.
type RawPost struct {
	ID              int64    `json:"id"`
	IDStr           string   `json:"idstr"`
	MblogID         string   `json:"mblogid"`
	CreatedAt       string   `json:"created_at"`
	Text            string   `json:"text"`
	TextRaw         string   `json:"text_raw"`
	RepostsCount    int      `json:"reposts_count"`
	CommentsCount   int      `json:"comments_count"`
	AttitudesCount  int      `json:"attitudes_count"`
	User            *RawUser `json:"user"`
	RetweetedStatus *RawPost `json:"retweeted_status"`
}

// RawComment is a comment entry as returned by the buildComments API
type RawComment struct {
	User      *RawUser `json:"user"`
	Text      string   `json:"text"`
	LikeCount int      `json:"like_count"`
}

// TimelineData is the data payload of a timeline response
type TimelineData struct {
	List  []RawPost `json:"list"`
	Total int       `json:"total"`
}

// TimelineResponse is the envelope for post listings.
// A response is usable iff Ok == 1 and Data carries a list field.
type TimelineResponse struct {
	Ok   int           `json:"ok"`
	Data *TimelineData `json:"data"`
}

// CommentsResponse is the envelope for comment listings
type CommentsResponse struct {
	Ok   int          `json:"ok"`
	Data []RawComment `json:"data"`
}

// ProfileData is the data payload of a profile response
type ProfileData struct {
	User RawUser `json:"user"`
}

// ProfileResponse is the envelope for profile lookups
type ProfileResponse struct {
	Ok   int          `json:"ok"`
	Data *ProfileData `json:"data"`
}

// FriendsResponse is the envelope for friend/follower listings
type FriendsResponse struct {
	Users []RawUser `json:"users"`
}
