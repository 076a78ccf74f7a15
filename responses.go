package steepshot

import "encoding/json"

// LoginResponse is returned by Login. SessionID comes from the sessionid cookie.
//
//	{"message": "User was logged in.", "username": "alice"}
type LoginResponse struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	SessionID string `json:"-"`
}

// IsLoggedIn reports whether the server confirmed the login.
func (r *LoginResponse) IsLoggedIn() bool { return r.Message == "User was logged in." }

func (r *LoginResponse) setSessionID(id string) { r.SessionID = id }

// RegisterResponse is returned by Register. SessionID comes from the sessionid cookie.
type RegisterResponse struct {
	Username  string `json:"username"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"-"`
}

func (r *RegisterResponse) setSessionID(id string) { r.SessionID = id }

// LogoutResponse is returned by Logout.
type LogoutResponse struct {
	Message string `json:"message"`
}

// Post is a single post or comment.
type Post struct {
	Body               string      `json:"body"`
	Title              string      `json:"title"`
	URL                string      `json:"url"`
	Category           string      `json:"category"`
	Author             string      `json:"author"`
	Avatar             string      `json:"avatar"`
	AuthorRewards      json.Number `json:"author_rewards,omitempty"`
	AuthorReputation   json.Number `json:"author_reputation,omitempty"`
	NetVotes           json.Number `json:"net_votes,omitempty"`
	Children           json.Number `json:"children,omitempty"`
	Created            string      `json:"created"`
	CuratorPayoutValue string      `json:"curator_payout_value"`
	TotalPayoutValue   string      `json:"total_payout_value"`
	PendingPayoutValue string      `json:"pending_payout_value"`
	Replies            []string    `json:"replies"`
	Tags               []string    `json:"tags,omitempty"`
	Vote               bool        `json:"vote"`
}

// PostsResponse is a page of posts.
type PostsResponse struct {
	Count    int    `json:"count"`
	Offset   string `json:"offset,omitempty"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []Post `json:"results"`
}

// CommentsResponse lists the comments of a post.
type CommentsResponse struct {
	Count    int    `json:"count"`
	Comments []Post `json:"results"`
}

// CreateCommentResponse:
//
//	{"message": "Comment created"}
type CreateCommentResponse struct {
	Message string `json:"message"`
}

// IsCreated reports whether the server confirmed the comment.
func (r *CreateCommentResponse) IsCreated() bool { return r.Message == "Comment created" }

// VoteResponse:
//
//	{"status": "OK", "new_total_payout_reward": "1.234 SBD"}
type VoteResponse struct {
	Status               string `json:"status"`
	NewTotalPayoutReward string `json:"new_total_payout_reward"`
}

// IsVoted reports whether the vote was accepted.
func (r *VoteResponse) IsVoted() bool { return r.Status == "OK" }

// FollowResponse is returned by Follow, e.g. {"message": "User is followed"}.
type FollowResponse struct {
	Message string `json:"message"`
}

// ImageUploadResponse describes the published photo post.
type ImageUploadResponse struct {
	Title string   `json:"title"`
	Photo string   `json:"photo"`
	Tags  []string `json:"tags"`
}

// Category is a post category (tag).
type Category struct {
	Name string `json:"name"`
}

// CategoriesResponse is a page of categories. TotalCount is only set by searches.
type CategoriesResponse struct {
	Count      int        `json:"count"`
	TotalCount int        `json:"total_count,omitempty"`
	Offset     string     `json:"offset,omitempty"`
	Results    []Category `json:"results"`
}

// Friend is an entry of a followers/following listing.
type Friend struct {
	Author      string `json:"author"`
	Avatar      string `json:"avatar"`
	HasFollowed bool   `json:"has_followed"`
}

// UserFriendsResponse is a page of followers or followings.
type UserFriendsResponse struct {
	Count   int      `json:"count"`
	Offset  string   `json:"offset,omitempty"`
	Results []Friend `json:"results"`
}

// IsLowRatedResponse is returned by IsLowRated.
type IsLowRatedResponse struct {
	ShowLowRated bool `json:"show_low_rated"`
}

// SetLowRatedResponse is returned by SetLowRated.
type SetLowRatedResponse struct {
	Message string `json:"message"`
}

// IsSet reports whether the preference was stored.
func (r *SetLowRatedResponse) IsSet() bool {
	return r.Message == "Show low rated checkbox has been set"
}
