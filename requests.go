package steepshot

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid request")

// ValidationError is returned by request constructors before anything is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Page selects a window of a listing. Offset names the first item to return,
// usually the Offset reported by the previous page. A Limit of zero or less
// uses the client's default limit.
type Page struct {
	Offset string
	Limit  int
}

// VoteType selects between upvote and downvote.
type VoteType int

const (
	VoteUp VoteType = iota
	VoteDown
)

func (t VoteType) endpoint() string {
	if t == VoteDown {
		return "downvote"
	}
	return "upvote"
}

func (t VoteType) String() string { return t.endpoint() }

// FollowType selects between follow and unfollow.
type FollowType int

const (
	Follow FollowType = iota
	Unfollow
)

func (t FollowType) endpoint() string {
	if t == Unfollow {
		return "unfollow"
	}
	return "follow"
}

func (t FollowType) String() string { return t.endpoint() }

// PostType selects a post feed.
type PostType int

const (
	PostsTop PostType = iota
	PostsHot
	PostsNew
)

func (t PostType) String() string {
	switch t {
	case PostsHot:
		return "hot"
	case PostsNew:
		return "new"
	default:
		return "top"
	}
}

// FriendsType selects followers or followings of a user.
type FriendsType int

const (
	Followers FriendsType = iota
	Following
)

func (t FriendsType) String() string {
	if t == Following {
		return "following"
	}
	return "followers"
}

func checkEnum(field string, v, max int) error {
	if v < 0 || v > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("has unknown value %d", v)}
	}
	return nil
}

// LoginRequest authenticates with a username and password.
type LoginRequest struct {
	username string
	password string
}

func NewLoginRequest(username, password string) (*LoginRequest, error) {
	if err := firstErr(required("username", username), required("password", password)); err != nil {
		return nil, err
	}
	return &LoginRequest{username: username, password: password}, nil
}

func (r *LoginRequest) Username() string { return r.username }

func (r *LoginRequest) body() any {
	return struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{r.username, r.password}
}

// RegisterRequest creates an account bound to a posting key. The posting key
// is checked by the server.
type RegisterRequest struct {
	postingKey string
	username   string
	password   string
}

func NewRegisterRequest(postingKey, username, password string) (*RegisterRequest, error) {
	if err := firstErr(required("username", username), required("password", password)); err != nil {
		return nil, err
	}
	return &RegisterRequest{postingKey: postingKey, username: username, password: password}, nil
}

func (r *RegisterRequest) Username() string { return r.username }

func (r *RegisterRequest) body() any {
	return struct {
		PostingKey string `json:"posting_key"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}{r.postingKey, r.username, r.password}
}

// LogoutRequest ends a session.
type LogoutRequest struct {
	sessionID string
}

func NewLogoutRequest(sessionID string) (*LogoutRequest, error) {
	if err := required("sessionID", sessionID); err != nil {
		return nil, err
	}
	return &LogoutRequest{sessionID: sessionID}, nil
}

// PostsRequest lists one of the global feeds. The session is optional.
type PostsRequest struct {
	sessionID string
	postType  PostType
	page      Page
}

func NewPostsRequest(sessionID string, postType PostType, page Page) (*PostsRequest, error) {
	if err := checkEnum("type", int(postType), int(PostsNew)); err != nil {
		return nil, err
	}
	return &PostsRequest{sessionID: sessionID, postType: postType, page: page}, nil
}

// NewTopPostsRequest is NewPostsRequest for the top feed.
func NewTopPostsRequest(sessionID string, page Page) (*PostsRequest, error) {
	return NewPostsRequest(sessionID, PostsTop, page)
}

func (r *PostsRequest) Type() PostType { return r.postType }
func (r *PostsRequest) Page() Page     { return r.page }

// UserPostsRequest lists posts written by a user.
type UserPostsRequest struct {
	sessionID string
	username  string
	page      Page
}

func NewUserPostsRequest(sessionID, username string, page Page) (*UserPostsRequest, error) {
	if err := required("username", username); err != nil {
		return nil, err
	}
	return &UserPostsRequest{sessionID: sessionID, username: username, page: page}, nil
}

func (r *UserPostsRequest) Username() string { return r.username }

// UserFriendsRequest lists followers or followings of a user.
type UserFriendsRequest struct {
	sessionID   string
	username    string
	friendsType FriendsType
	page        Page
}

func NewUserFriendsRequest(sessionID, username string, friendsType FriendsType, page Page) (*UserFriendsRequest, error) {
	if err := firstErr(
		required("username", username),
		checkEnum("type", int(friendsType), int(Following)),
	); err != nil {
		return nil, err
	}
	return &UserFriendsRequest{sessionID: sessionID, username: username, friendsType: friendsType, page: page}, nil
}

// VoteRequest up- or downvotes a post addressed by identifier
// (e.g. /category/@author/slug).
type VoteRequest struct {
	sessionID  string
	voteType   VoteType
	identifier string
}

func NewVoteRequest(sessionID string, voteType VoteType, identifier string) (*VoteRequest, error) {
	if err := firstErr(
		required("sessionID", sessionID),
		checkEnum("type", int(voteType), int(VoteDown)),
		required("identifier", identifier),
	); err != nil {
		return nil, err
	}
	return &VoteRequest{sessionID: sessionID, voteType: voteType, identifier: identifier}, nil
}

func (r *VoteRequest) Type() VoteType     { return r.voteType }
func (r *VoteRequest) Identifier() string { return r.identifier }

func (r *VoteRequest) body() any {
	return struct {
		Identifier string `json:"identifier"`
	}{r.identifier}
}

// FollowRequest follows or unfollows a user.
type FollowRequest struct {
	sessionID  string
	followType FollowType
	username   string
}

func NewFollowRequest(sessionID string, followType FollowType, username string) (*FollowRequest, error) {
	if err := firstErr(
		required("sessionID", sessionID),
		checkEnum("type", int(followType), int(Unfollow)),
		required("username", username),
	); err != nil {
		return nil, err
	}
	return &FollowRequest{sessionID: sessionID, followType: followType, username: username}, nil
}

func (r *FollowRequest) Type() FollowType { return r.followType }
func (r *FollowRequest) Username() string { return r.username }

// GetCommentsRequest lists the comments of a post.
type GetCommentsRequest struct {
	sessionID string
	url       string
}

func NewGetCommentsRequest(sessionID, url string) (*GetCommentsRequest, error) {
	if err := required("url", url); err != nil {
		return nil, err
	}
	return &GetCommentsRequest{sessionID: sessionID, url: url}, nil
}

func (r *GetCommentsRequest) URL() string { return r.url }

// CreateCommentRequest replies to a post. Body and title are checked by the server.
type CreateCommentRequest struct {
	sessionID string
	url       string
	body      string
	title     string
}

func NewCreateCommentRequest(sessionID, url, body, title string) (*CreateCommentRequest, error) {
	if err := firstErr(required("sessionID", sessionID), required("url", url)); err != nil {
		return nil, err
	}
	return &CreateCommentRequest{sessionID: sessionID, url: url, body: body, title: title}, nil
}

func (r *CreateCommentRequest) URL() string { return r.url }

func (r *CreateCommentRequest) wire() any {
	return struct {
		Body  string `json:"body"`
		Title string `json:"title"`
	}{r.body, r.title}
}

// UploadImageRequest publishes a photo post.
type UploadImageRequest struct {
	sessionID string
	title     string
	photo     []byte
	tags      []string
}

func NewUploadImageRequest(sessionID, title string, photo []byte, tags ...string) (*UploadImageRequest, error) {
	if err := firstErr(required("sessionID", sessionID), required("title", title)); err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, &ValidationError{Field: "photo", Reason: "must not be empty"}
	}
	return &UploadImageRequest{
		sessionID: sessionID,
		title:     title,
		photo:     append([]byte(nil), photo...),
		tags:      append([]string(nil), tags...),
	}, nil
}

func (r *UploadImageRequest) Title() string  { return r.title }
func (r *UploadImageRequest) Tags() []string { return append([]string(nil), r.tags...) }

// CategoriesRequest lists top categories.
type CategoriesRequest struct {
	sessionID string
	page      Page
}

func NewCategoriesRequest(sessionID string, page Page) (*CategoriesRequest, error) {
	return &CategoriesRequest{sessionID: sessionID, page: page}, nil
}

// MinSearchQueryLength is the shortest accepted category search query.
const MinSearchQueryLength = 3

// SearchCategoriesRequest searches categories by name.
type SearchCategoriesRequest struct {
	sessionID string
	query     string
	page      Page
}

func NewSearchCategoriesRequest(sessionID, query string, page Page) (*SearchCategoriesRequest, error) {
	if err := required("query", query); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinSearchQueryLength {
		return nil, &ValidationError{Field: "query", Reason: fmt.Sprintf("must be at least %d characters", MinSearchQueryLength)}
	}
	return &SearchCategoriesRequest{sessionID: sessionID, query: query, page: page}, nil
}

// IsLowRatedRequest reads the low-rated content preference.
type IsLowRatedRequest struct {
	sessionID string
}

func NewIsLowRatedRequest(sessionID string) (*IsLowRatedRequest, error) {
	if err := required("sessionID", sessionID); err != nil {
		return nil, err
	}
	return &IsLowRatedRequest{sessionID: sessionID}, nil
}

// SetLowRatedRequest changes the low-rated content preference.
type SetLowRatedRequest struct {
	sessionID    string
	showLowRated bool
}

func NewSetLowRatedRequest(sessionID string, showLowRated bool) (*SetLowRatedRequest, error) {
	if err := required("sessionID", sessionID); err != nil {
		return nil, err
	}
	return &SetLowRatedRequest{sessionID: sessionID, showLowRated: showLowRated}, nil
}

func (r *SetLowRatedRequest) body() any {
	return struct {
		ShowLowRated bool `json:"show_low_rated"`
	}{r.showLowRated}
}
