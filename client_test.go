package steepshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/steepshot-go/internal/mockapi"
)

func newMockClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(mockapi.NewServer())
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+mockapi.DefaultPrefix, opts...)
	require.NoError(t, err)
	return c
}

func mustLogin(t *testing.T, c *Client) string {
	t.Helper()
	req, err := NewLoginRequest(mockapi.Username, mockapi.Password)
	require.NoError(t, err)
	res := c.Login(context.Background(), req)
	require.True(t, res.Success, res.Errors)
	require.NotEmpty(t, res.Result.SessionID)
	return res.Result.SessionID
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("not a url")
	assert.Error(t, err)
}

func TestLoginFlow(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	sessionID := mustLogin(t, c)
	assert.NotEmpty(t, sessionID)

	req, err := NewLoginRequest(mockapi.Username, "wrong")
	require.NoError(t, err)
	res := c.Login(ctx, req)
	assert.False(t, res.Success)
	assert.Nil(t, res.Result)
	assert.Equal(t, []string{"Unable to login with provided credentials."}, res.Errors)

	req, err = NewLoginRequest(mockapi.CookielessUsername, mockapi.CookielessPassword)
	require.NoError(t, err)
	res = c.Login(ctx, req)
	assert.False(t, res.Success)
	assert.Equal(t, []string{ErrMissingSession}, res.Errors)
}

func TestRegisterReportsFieldErrors(t *testing.T) {
	c := newMockClient(t)
	req, err := NewRegisterRequest("", mockapi.Username, "12345")
	require.NoError(t, err)

	res := c.Register(context.Background(), req)
	assert.False(t, res.Success)
	assert.Equal(t, []string{
		"posting_key This field may not be blank.",
		"username A user with that username already exists.",
		"password This password is too short. It must contain at least 8 characters.",
		"password This password is entirely numeric.",
	}, res.Errors)
}

func TestTopPostsDefaultLimit(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	req, err := NewTopPostsRequest("", Page{})
	require.NoError(t, err)
	res := c.GetTopPosts(ctx, req)
	require.True(t, res.Success, res.Errors)
	assert.Len(t, res.Result.Results, DefaultLimit)
	assert.NotEmpty(t, res.Result.Offset)

	next, err := NewTopPostsRequest("", Page{Offset: res.Result.Offset, Limit: 2})
	require.NoError(t, err)
	res2 := c.GetTopPosts(ctx, next)
	require.True(t, res2.Success, res2.Errors)
	require.Len(t, res2.Result.Results, 2)
	assert.Equal(t, res.Result.Offset, res2.Result.Results[0].URL)
}

func TestVoteTwiceFails(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	req, err := NewVoteRequest(sessionID, VoteUp, mockapi.CommentedPost)
	require.NoError(t, err)

	res := c.Vote(ctx, req)
	require.True(t, res.Success, res.Errors)
	assert.True(t, res.Result.IsVoted())

	res = c.Vote(ctx, req)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "performed the same action twice")

	down, err := NewVoteRequest(sessionID, VoteDown, mockapi.CommentedPost)
	require.NoError(t, err)
	assert.True(t, c.Vote(ctx, down).Success)
}

func TestVoteErrors(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	testCases := []struct {
		name       string
		sessionID  string
		identifier string
		wantErrors []string
	}{
		{
			name:       "server error",
			sessionID:  sessionID,
			identifier: "/life/bob/post-1",
			wantErrors: []string{"Internal Server Error"},
		},
		{
			name:       "invalid identifier",
			sessionID:  sessionID,
			identifier: "/life/@/post-1",
			wantErrors: []string{"identifier Invalid identifier"},
		},
		{
			name:       "unknown session",
			sessionID:  "expired",
			identifier: mockapi.CommentedPost,
			wantErrors: []string{"Authentication credentials were not provided."},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewVoteRequest(tc.sessionID, VoteUp, tc.identifier)
			require.NoError(t, err)
			res := c.Vote(ctx, req)
			assert.False(t, res.Success)
			assert.Nil(t, res.Result)
			assert.Equal(t, tc.wantErrors, res.Errors)
		})
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	c := newMockClient(t)
	req, err := NewUserPostsRequest("", "nobody", Page{})
	require.NoError(t, err)
	res := c.GetUserPosts(context.Background(), req)
	assert.Equal(t, []string{"Not found."}, res.Errors)
}

func TestHTMLErrorPage(t *testing.T) {
	srv := httptest.NewServer(mockapi.NewServer())
	t.Cleanup(srv.Close)

	// Nothing is mounted under /v9/, so the HTML 404 page answers.
	c, err := NewClient(srv.URL + "/v9/")
	require.NoError(t, err)
	req, err := NewTopPostsRequest("", Page{})
	require.NoError(t, err)

	res := c.GetTopPosts(context.Background(), req)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "<html>")
}

func TestCommentsRoundTrip(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	list, err := NewGetCommentsRequest("", mockapi.CommentedPost)
	require.NoError(t, err)
	res := c.GetComments(ctx, list)
	require.True(t, res.Success, res.Errors)
	assert.Len(t, res.Result.Comments, mockapi.CommentCount)

	blank, err := NewCreateCommentRequest(sessionID, mockapi.CommentedPost, "", "title")
	require.NoError(t, err)
	created := c.CreateComment(ctx, blank)
	assert.Equal(t, []string{"body This field may not be blank."}, created.Errors)

	good, err := NewCreateCommentRequest(sessionID, mockapi.CommentedPost, "nice shot", "re")
	require.NoError(t, err)
	created = c.CreateComment(ctx, good)
	require.True(t, created.Success, created.Errors)
	assert.True(t, created.Result.IsCreated())

	res = c.GetComments(ctx, list)
	require.True(t, res.Success, res.Errors)
	assert.Len(t, res.Result.Comments, mockapi.CommentCount+1)

	wrong, err := NewGetCommentsRequest("", "nonsense")
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrong identifier."}, c.GetComments(ctx, wrong).Errors)
}

func TestFollowAndFriends(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	follow, err := NewFollowRequest(sessionID, Follow, "bob")
	require.NoError(t, err)
	res := c.Follow(ctx, follow)
	require.True(t, res.Success, res.Errors)
	assert.Equal(t, "User is followed", res.Result.Message)

	friends, err := NewUserFriendsRequest("", mockapi.Username, Followers, Page{})
	require.NoError(t, err)
	fr := c.GetUserFriends(ctx, friends)
	require.True(t, fr.Success, fr.Errors)
	assert.Len(t, fr.Result.Results, mockapi.FollowersCount)
}

func TestUploadImage(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	req, err := NewUploadImageRequest(sessionID, "sunset", []byte("\xff\xd8\xff\xe0 jpeg"), "nature", "sky")
	require.NoError(t, err)
	res := c.Upload(ctx, req)
	require.True(t, res.Success, res.Errors)
	assert.Equal(t, "sunset", res.Result.Title)
	assert.Equal(t, []string{"nature", "sky"}, res.Result.Tags)
	assert.NotEmpty(t, res.Result.Photo)
}

func TestCategories(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	top, err := NewCategoriesRequest("", Page{Limit: 5})
	require.NoError(t, err)
	res := c.GetCategories(ctx, top)
	require.True(t, res.Success, res.Errors)
	assert.Len(t, res.Result.Results, 5)

	search, err := NewSearchCategoriesRequest("", "photo", Page{})
	require.NoError(t, err)
	found := c.SearchCategories(ctx, search)
	require.True(t, found.Success, found.Errors)
	assert.Equal(t, 2, found.Result.TotalCount)
}

func TestLowRatedAndLogout(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()
	sessionID := mustLogin(t, c)

	set, err := NewSetLowRatedRequest(sessionID, true)
	require.NoError(t, err)
	sr := c.SetLowRated(ctx, set)
	require.True(t, sr.Success, sr.Errors)
	assert.True(t, sr.Result.IsSet())

	get, err := NewIsLowRatedRequest(sessionID)
	require.NoError(t, err)
	gr := c.IsLowRated(ctx, get)
	require.True(t, gr.Success, gr.Errors)
	assert.True(t, gr.Result.ShowLowRated)

	logout, err := NewLogoutRequest(sessionID)
	require.NoError(t, err)
	assert.True(t, c.Logout(ctx, logout).Success)
	assert.False(t, c.IsLowRated(ctx, get).Success)
}

func TestTransportFailures(t *testing.T) {
	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(hang.Close)

	c, err := NewClient(hang.URL + "/api/v1/")
	require.NoError(t, err)
	req, err := NewTopPostsRequest("", Page{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := c.GetTopPosts(ctx, req)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	res = c.GetTopPosts(ctx, req)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
}

func TestRegisterFlow(t *testing.T) {
	ctx := context.Background()
	postingKey := "5" + strings.Repeat("K", 50)

	t.Run("session from cookie", func(t *testing.T) {
		c := newMockClient(t)
		req, err := NewRegisterRequest(postingKey, "newbie", "longpassword")
		require.NoError(t, err)

		res := c.Register(ctx, req)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, "newbie", res.Result.Username)
		assert.NotEmpty(t, res.Result.SessionID)

		// the new session is accepted by authenticated endpoints
		get, err := NewIsLowRatedRequest(res.Result.SessionID)
		require.NoError(t, err)
		assert.True(t, c.IsLowRated(ctx, get).Success)
	})

	t.Run("created without cookie", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/register", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"username":"newbie"}`))
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(srv.URL + "/api/v1/")
		require.NoError(t, err)
		req, err := NewRegisterRequest(postingKey, "newbie", "longpassword")
		require.NoError(t, err)

		res := c.Register(ctx, req)
		assert.False(t, res.Success)
		assert.Nil(t, res.Result)
		assert.Equal(t, []string{ErrMissingSession}, res.Errors)
	})
}
