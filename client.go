// Package steepshot is a client for the Steepshot content platform API:
// authentication, post feeds, voting, following, comments, photo uploads and
// categories.
//
// Every operation returns a *Result. Failures never surface as Go errors;
// they are collected as human-readable messages in Result.Errors, normalised
// from the several error shapes the server uses. Only request constructors
// return errors, and they do so before anything is sent.
//
// The session token returned by Login or Register is owned by the caller and
// has to be passed to every authenticated request.
package steepshot

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvcrn/steepshot-go/internal/gateway"
	serverhttp "github.com/dvcrn/steepshot-go/internal/http"
)

// DefaultLimit is used for listings requested with a zero or negative limit.
const DefaultLimit = 10

// HTTPClient is the transport used by the client. *http.Client satisfies it.
type HTTPClient = serverhttp.HTTPClient

// Client issues API calls. It holds no per-user state and is safe for
// concurrent use.
type Client struct {
	gateway      gateway.Gateway
	log          zerolog.Logger
	defaultLimit int
}

type clientOptions struct {
	gateway      gateway.Gateway
	gatewayOpts  []gateway.Option
	log          zerolog.Logger
	defaultLimit int
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *clientOptions) { o.gatewayOpts = append(o.gatewayOpts, gateway.WithHTTPClient(c)) }
}

// WithLogger enables debug logging of calls and failures.
func WithLogger(l zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.log = l
		o.gatewayOpts = append(o.gatewayOpts, gateway.WithLogger(l))
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.gatewayOpts = append(o.gatewayOpts, gateway.WithUserAgent(ua)) }
}

// WithRateLimit spaces calls to at most rps per second. Calls are delayed,
// never retried.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) { o.gatewayOpts = append(o.gatewayOpts, gateway.WithRateLimit(rps, burst)) }
}

// WithDefaultLimit overrides DefaultLimit. Values <= 0 are ignored.
func WithDefaultLimit(limit int) Option {
	return func(o *clientOptions) {
		if limit > 0 {
			o.defaultLimit = limit
		}
	}
}

func withGateway(g gateway.Gateway) Option {
	return func(o *clientOptions) { o.gateway = g }
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. "https://steepshot.example/api/v1/".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	o := &clientOptions{log: zerolog.Nop(), defaultLimit: DefaultLimit}
	for _, opt := range opts {
		opt(o)
	}

	gw := o.gateway
	if gw == nil {
		hg, err := gateway.New(baseURL, o.gatewayOpts...)
		if err != nil {
			return nil, err
		}
		gw = hg
	}

	return &Client{gateway: gw, log: o.log, defaultLimit: o.defaultLimit}, nil
}

var errNilRequest = errors.New("request is nil")

// Login authenticates and returns the session token in LoginResponse.SessionID.
func (c *Client) Login(ctx context.Context, req *LoginRequest) *Result[LoginResponse] {
	if req == nil {
		return failed[LoginResponse](errNilRequest.Error())
	}
	const endpoint = "login"
	raw := c.gateway.Post(ctx, endpoint, []gateway.Param{gateway.JSONBody(req.body())})
	return attachSession(process[LoginResponse](c.log, endpoint, raw), raw)
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) *Result[RegisterResponse] {
	if req == nil {
		return failed[RegisterResponse](errNilRequest.Error())
	}
	const endpoint = "register"
	raw := c.gateway.Post(ctx, endpoint, []gateway.Param{gateway.JSONBody(req.body())})
	return attachSession(process[RegisterResponse](c.log, endpoint, raw), raw)
}

// Logout ends the session named in req.
func (c *Client) Logout(ctx context.Context, req *LogoutRequest) *Result[LogoutResponse] {
	if req == nil {
		return failed[LogoutResponse](errNilRequest.Error())
	}
	const endpoint = "logout"
	raw := c.gateway.Post(ctx, endpoint, session(req.sessionID))
	return process[LogoutResponse](c.log, endpoint, raw)
}

// GetPosts lists the top, hot or new feed.
func (c *Client) GetPosts(ctx context.Context, req *PostsRequest) *Result[PostsResponse] {
	if req == nil {
		return failed[PostsResponse](errNilRequest.Error())
	}
	endpoint := "posts/" + req.postType.String()
	raw := c.gateway.Get(ctx, endpoint, c.paged(session(req.sessionID), req.page))
	return process[PostsResponse](c.log, endpoint, raw)
}

// GetTopPosts lists the top feed regardless of req's post type.
func (c *Client) GetTopPosts(ctx context.Context, req *PostsRequest) *Result[PostsResponse] {
	if req == nil {
		return failed[PostsResponse](errNilRequest.Error())
	}
	top := *req
	top.postType = PostsTop
	return c.GetPosts(ctx, &top)
}

// GetUserPosts lists posts written by a user.
func (c *Client) GetUserPosts(ctx context.Context, req *UserPostsRequest) *Result[PostsResponse] {
	if req == nil {
		return failed[PostsResponse](errNilRequest.Error())
	}
	endpoint := "user/" + pathSegment(req.username) + "/posts/"
	raw := c.gateway.Get(ctx, endpoint, c.paged(session(req.sessionID), req.page))
	return process[PostsResponse](c.log, endpoint, raw)
}

// GetUserFriends lists followers or followings depending on the request's FriendsType.
func (c *Client) GetUserFriends(ctx context.Context, req *UserFriendsRequest) *Result[UserFriendsResponse] {
	if req == nil {
		return failed[UserFriendsResponse](errNilRequest.Error())
	}
	endpoint := "user/" + pathSegment(req.username) + "/" + req.friendsType.String()
	raw := c.gateway.Get(ctx, endpoint, c.paged(session(req.sessionID), req.page))
	return process[UserFriendsResponse](c.log, endpoint, raw)
}

// Vote posts to upvote or downvote depending on the request's VoteType.
func (c *Client) Vote(ctx context.Context, req *VoteRequest) *Result[VoteResponse] {
	if req == nil {
		return failed[VoteResponse](errNilRequest.Error())
	}
	endpoint := "post/" + identifierPath(req.identifier) + "/" + req.voteType.endpoint()
	params := append(session(req.sessionID), gateway.JSONBody(req.body()))
	raw := c.gateway.Post(ctx, endpoint, params)
	return process[VoteResponse](c.log, endpoint, raw)
}

// Follow posts to follow or unfollow depending on the request's FollowType.
func (c *Client) Follow(ctx context.Context, req *FollowRequest) *Result[FollowResponse] {
	if req == nil {
		return failed[FollowResponse](errNilRequest.Error())
	}
	endpoint := "user/" + pathSegment(req.username) + "/" + req.followType.endpoint()
	raw := c.gateway.Post(ctx, endpoint, session(req.sessionID))
	return process[FollowResponse](c.log, endpoint, raw)
}

// GetComments lists the comments of a post.
func (c *Client) GetComments(ctx context.Context, req *GetCommentsRequest) *Result[CommentsResponse] {
	if req == nil {
		return failed[CommentsResponse](errNilRequest.Error())
	}
	endpoint := "post/" + identifierPath(req.url) + "/comments"
	raw := c.gateway.Get(ctx, endpoint, session(req.sessionID))
	return process[CommentsResponse](c.log, endpoint, raw)
}

// CreateComment replies to a post.
func (c *Client) CreateComment(ctx context.Context, req *CreateCommentRequest) *Result[CreateCommentResponse] {
	if req == nil {
		return failed[CreateCommentResponse](errNilRequest.Error())
	}
	endpoint := "post/" + identifierPath(req.url) + "/comment"
	params := append(session(req.sessionID), gateway.JSONBody(req.wire()))
	raw := c.gateway.Post(ctx, endpoint, params)
	return process[CreateCommentResponse](c.log, endpoint, raw)
}

// Upload publishes a photo with its title and tags.
func (c *Client) Upload(ctx context.Context, req *UploadImageRequest) *Result[ImageUploadResponse] {
	if req == nil {
		return failed[ImageUploadResponse](errNilRequest.Error())
	}
	const endpoint = "post"
	raw := c.gateway.Upload(ctx, endpoint, req.title, req.photo, session(req.sessionID), req.tags)
	return process[ImageUploadResponse](c.log, endpoint, raw)
}

// GetCategories lists the top categories.
func (c *Client) GetCategories(ctx context.Context, req *CategoriesRequest) *Result[CategoriesResponse] {
	if req == nil {
		return failed[CategoriesResponse](errNilRequest.Error())
	}
	const endpoint = "categories/top"
	raw := c.gateway.Get(ctx, endpoint, c.paged(session(req.sessionID), req.page))
	return process[CategoriesResponse](c.log, endpoint, raw)
}

// SearchCategories finds categories whose name contains the query.
func (c *Client) SearchCategories(ctx context.Context, req *SearchCategoriesRequest) *Result[CategoriesResponse] {
	if req == nil {
		return failed[CategoriesResponse](errNilRequest.Error())
	}
	const endpoint = "categories/search"
	params := append(session(req.sessionID), gateway.Query("query", strings.TrimSpace(req.query)))
	raw := c.gateway.Get(ctx, endpoint, c.paged(params, req.page))
	return process[CategoriesResponse](c.log, endpoint, raw)
}

// IsLowRated reads whether low-rated posts are shown to the session user.
func (c *Client) IsLowRated(ctx context.Context, req *IsLowRatedRequest) *Result[IsLowRatedResponse] {
	if req == nil {
		return failed[IsLowRatedResponse](errNilRequest.Error())
	}
	const endpoint = "user/low_rated"
	raw := c.gateway.Get(ctx, endpoint, session(req.sessionID))
	return process[IsLowRatedResponse](c.log, endpoint, raw)
}

// SetLowRated changes whether low-rated posts are shown to the session user.
func (c *Client) SetLowRated(ctx context.Context, req *SetLowRatedRequest) *Result[SetLowRatedResponse] {
	if req == nil {
		return failed[SetLowRatedResponse](errNilRequest.Error())
	}
	const endpoint = "user/low_rated"
	params := append(session(req.sessionID), gateway.JSONBody(req.body()))
	raw := c.gateway.Post(ctx, endpoint, params)
	return process[SetLowRatedResponse](c.log, endpoint, raw)
}

// session returns the cookie parameter, or nothing for anonymous calls.
func session(id string) []gateway.Param {
	if id == "" {
		return nil
	}
	return []gateway.Param{gateway.SessionCookie(SessionCookieName, id)}
}

func (c *Client) paged(params []gateway.Param, page Page) []gateway.Param {
	if page.Offset != "" {
		params = append(params, gateway.Query("offset", page.Offset))
	}
	limit := page.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}
	return append(params, gateway.Query("limit", limit))
}

// identifierPath turns "/category/@author/slug" into "category/@author/slug".
func identifierPath(id string) string {
	return strings.Trim(strings.TrimSpace(id), "/")
}

func pathSegment(s string) string {
	return strings.TrimSpace(s)
}
