package steepshot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidation(t *testing.T) {
	testCases := []struct {
		name      string
		build     func() error
		wantField string
	}{
		{"login username", func() error { _, err := NewLoginRequest(" ", "pw"); return err }, "username"},
		{"login password", func() error { _, err := NewLoginRequest("alice", ""); return err }, "password"},
		{"register username", func() error { _, err := NewRegisterRequest("5K", "", "pw"); return err }, "username"},
		{"logout session", func() error { _, err := NewLogoutRequest(""); return err }, "sessionID"},
		{"posts type", func() error { _, err := NewPostsRequest("", PostType(9), Page{}); return err }, "type"},
		{"user posts username", func() error { _, err := NewUserPostsRequest("", "", Page{}); return err }, "username"},
		{"friends type", func() error { _, err := NewUserFriendsRequest("", "bob", FriendsType(-1), Page{}); return err }, "type"},
		{"vote session", func() error { _, err := NewVoteRequest("", VoteUp, "/a/@b/c"); return err }, "sessionID"},
		{"vote identifier", func() error { _, err := NewVoteRequest("tok", VoteDown, ""); return err }, "identifier"},
		{"follow username", func() error { _, err := NewFollowRequest("tok", Unfollow, ""); return err }, "username"},
		{"comments url", func() error { _, err := NewGetCommentsRequest("", ""); return err }, "url"},
		{"comment session", func() error { _, err := NewCreateCommentRequest("", "/a/@b/c", "x", "y"); return err }, "sessionID"},
		{"upload title", func() error { _, err := NewUploadImageRequest("tok", "", []byte{1}); return err }, "title"},
		{"upload photo", func() error { _, err := NewUploadImageRequest("tok", "t", nil); return err }, "photo"},
		{"search short", func() error { _, err := NewSearchCategoriesRequest("", " ab ", Page{}); return err }, "query"},
		{"low rated session", func() error { _, err := NewIsLowRatedRequest(""); return err }, "sessionID"},
		{"set low rated session", func() error { _, err := NewSetLowRatedRequest("", true); return err }, "sessionID"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.Contains(t, err.Error(), tc.wantField)
		})
	}
}

func TestRequestsAcceptValidInput(t *testing.T) {
	_, err := NewLoginRequest("alice", "secret123")
	assert.NoError(t, err)
	_, err = NewTopPostsRequest("", Page{Limit: 5})
	assert.NoError(t, err)
	_, err = NewCategoriesRequest("", Page{})
	assert.NoError(t, err)
	_, err = NewSearchCategoriesRequest("", "pho", Page{})
	assert.NoError(t, err)
	_, err = NewCreateCommentRequest("tok", "/a/@b/c", "", "")
	assert.NoError(t, err, "body and title are checked by the server")
}

func TestUploadRequestCopiesInput(t *testing.T) {
	photo := []byte{1, 2, 3}
	tags := []string{"a", "b"}
	req, err := NewUploadImageRequest("tok", "title", photo, tags...)
	require.NoError(t, err)

	photo[0] = 9
	tags[0] = "z"
	assert.Equal(t, []byte{1, 2, 3}, req.photo)
	assert.Equal(t, []string{"a", "b"}, req.Tags())
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "upvote", VoteUp.String())
	assert.Equal(t, "downvote", VoteDown.String())
	assert.Equal(t, "follow", Follow.String())
	assert.Equal(t, "unfollow", Unfollow.String())
	assert.Equal(t, "top", PostsTop.String())
	assert.Equal(t, "hot", PostsHot.String())
	assert.Equal(t, "new", PostsNew.String())
	assert.Equal(t, "followers", Followers.String())
	assert.Equal(t, "following", Following.String())
}
