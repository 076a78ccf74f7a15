package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	steepshot "github.com/dvcrn/steepshot-go"
	"github.com/dvcrn/steepshot-go/internal/session"
)

type app struct {
	client *steepshot.Client
	store  session.Store
	out    io.Writer
	errOut io.Writer
	log    zerolog.Logger
}

type handler func(ctx context.Context, args []string) int

func (a *app) commands() map[string]handler {
	return map[string]handler{
		"login":             a.login,
		"register":          a.register,
		"logout":            a.logout,
		"top":               a.top,
		"posts":             a.posts,
		"user-posts":        a.userPosts,
		"friends":           a.friends,
		"comments":          a.comments,
		"comment":           a.comment,
		"vote":              a.vote,
		"follow":            a.follow,
		"upload":            a.upload,
		"categories":        a.categories,
		"search-categories": a.searchCategories,
		"low-rated":         a.lowRated,
		"feed":              a.feed,
	}
}

// emit prints the result as indented JSON and maps success to the exit code.
func emit[T any](a *app, res *steepshot.Result[T]) int {
	if err := a.writeJSON(res); err != nil {
		return 1
	}
	if !res.Success {
		return 1
	}
	return 0
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(a.errOut, "encode output: %v\n", err)
		return err
	}
	return nil
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.errOut, "error: %v\n", err)
	return 1
}

// flags parses args, allowing flags after positional arguments, and checks
// the number of positional arguments.
func (a *app) flags(fs *flag.FlagSet, args []string, positional ...string) ([]string, bool) {
	fs.SetOutput(a.errOut)
	var rest []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, false
		}
		if fs.NArg() == 0 {
			break
		}
		rest = append(rest, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(rest) != len(positional) {
		fmt.Fprintf(a.errOut, "%s expects %d argument(s): %v\n", fs.Name(), len(positional), positional)
		return nil, false
	}
	return rest, true
}

func pageFlags(fs *flag.FlagSet) func() steepshot.Page {
	offset := fs.String("offset", "", "first item to return (the offset of the previous page)")
	limit := fs.Int("limit", 0, "page size (0 uses the configured default)")
	return func() steepshot.Page { return steepshot.Page{Offset: *offset, Limit: *limit} }
}

// sessionID returns the stored token. Anonymous calls get "" when nothing is stored.
func (a *app) sessionID(required bool) (string, error) {
	s, err := a.store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) && !required {
			return "", nil
		}
		return "", err
	}
	return s.ID, nil
}

func (a *app) saveSession(id, username string) {
	if err := a.store.Save(&session.Session{ID: id, Username: username, CreatedAt: time.Now().UTC()}); err != nil {
		a.log.Warn().Err(err).Str("store", a.store.Name()).Msg("Could not persist session")
	}
}

func (a *app) login(ctx context.Context, args []string) int {
	pos, ok := a.flags(flag.NewFlagSet("login", flag.ContinueOnError), args, "username", "password")
	if !ok {
		return 2
	}
	req, err := steepshot.NewLoginRequest(pos[0], pos[1])
	if err != nil {
		return a.fail(err)
	}
	res := a.client.Login(ctx, req)
	if res.Success {
		a.saveSession(res.Result.SessionID, req.Username())
	}
	return emit(a, res)
}

func (a *app) register(ctx context.Context, args []string) int {
	pos, ok := a.flags(flag.NewFlagSet("register", flag.ContinueOnError), args, "posting-key", "username", "password")
	if !ok {
		return 2
	}
	req, err := steepshot.NewRegisterRequest(pos[0], pos[1], pos[2])
	if err != nil {
		return a.fail(err)
	}
	res := a.client.Register(ctx, req)
	if res.Success {
		a.saveSession(res.Result.SessionID, req.Username())
	}
	return emit(a, res)
}

func (a *app) logout(ctx context.Context, args []string) int {
	if _, ok := a.flags(flag.NewFlagSet("logout", flag.ContinueOnError), args); !ok {
		return 2
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewLogoutRequest(id)
	if err != nil {
		return a.fail(err)
	}
	res := a.client.Logout(ctx, req)
	if err := a.store.Clear(); err != nil {
		a.log.Warn().Err(err).Msg("Could not clear session")
	}
	return emit(a, res)
}

func (a *app) top(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	page := pageFlags(fs)
	if _, ok := a.flags(fs, args); !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewTopPostsRequest(id, page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetTopPosts(ctx, req))
}

func parsePostType(s string) (steepshot.PostType, error) {
	switch s {
	case "top":
		return steepshot.PostsTop, nil
	case "hot":
		return steepshot.PostsHot, nil
	case "new":
		return steepshot.PostsNew, nil
	default:
		return 0, fmt.Errorf("unknown post type %q", s)
	}
}

func (a *app) posts(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("posts", flag.ContinueOnError)
	kind := fs.String("type", "top", "feed: top, hot or new")
	page := pageFlags(fs)
	if _, ok := a.flags(fs, args); !ok {
		return 2
	}
	postType, err := parsePostType(*kind)
	if err != nil {
		return a.fail(err)
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewPostsRequest(id, postType, page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetPosts(ctx, req))
}

func (a *app) userPosts(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("user-posts", flag.ContinueOnError)
	page := pageFlags(fs)
	pos, ok := a.flags(fs, args, "username")
	if !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewUserPostsRequest(id, pos[0], page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetUserPosts(ctx, req))
}

func (a *app) friends(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("friends", flag.ContinueOnError)
	following := fs.Bool("following", false, "list followings instead of followers")
	page := pageFlags(fs)
	pos, ok := a.flags(fs, args, "username")
	if !ok {
		return 2
	}
	kind := steepshot.Followers
	if *following {
		kind = steepshot.Following
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewUserFriendsRequest(id, pos[0], kind, page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetUserFriends(ctx, req))
}

func (a *app) comments(ctx context.Context, args []string) int {
	pos, ok := a.flags(flag.NewFlagSet("comments", flag.ContinueOnError), args, "post-url")
	if !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewGetCommentsRequest(id, pos[0])
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetComments(ctx, req))
}

func (a *app) comment(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	body := fs.String("body", "", "comment text")
	title := fs.String("title", "", "comment title")
	pos, ok := a.flags(fs, args, "post-url")
	if !ok {
		return 2
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewCreateCommentRequest(id, pos[0], *body, *title)
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.CreateComment(ctx, req))
}

func (a *app) vote(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("vote", flag.ContinueOnError)
	down := fs.Bool("down", false, "downvote instead of upvote")
	pos, ok := a.flags(fs, args, "post-url")
	if !ok {
		return 2
	}
	kind := steepshot.VoteUp
	if *down {
		kind = steepshot.VoteDown
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewVoteRequest(id, kind, pos[0])
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.Vote(ctx, req))
}

func (a *app) follow(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("follow", flag.ContinueOnError)
	unfollow := fs.Bool("unfollow", false, "unfollow instead of follow")
	pos, ok := a.flags(fs, args, "username")
	if !ok {
		return 2
	}
	kind := steepshot.Follow
	if *unfollow {
		kind = steepshot.Unfollow
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewFollowRequest(id, kind, pos[0])
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.Follow(ctx, req))
}

func (a *app) upload(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	title := fs.String("title", "", "post title (defaults to the file name)")
	tags := fs.String("tags", "", "comma separated tags")
	pos, ok := a.flags(fs, args, "file")
	if !ok {
		return 2
	}
	photo, err := os.ReadFile(pos[0])
	if err != nil {
		return a.fail(err)
	}
	if *title == "" {
		*title = filepath.Base(pos[0])
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewUploadImageRequest(id, *title, photo, splitTags(*tags)...)
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.Upload(ctx, req))
}

func (a *app) categories(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("categories", flag.ContinueOnError)
	page := pageFlags(fs)
	if _, ok := a.flags(fs, args); !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewCategoriesRequest(id, page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.GetCategories(ctx, req))
}

func (a *app) searchCategories(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("search-categories", flag.ContinueOnError)
	page := pageFlags(fs)
	pos, ok := a.flags(fs, args, "query")
	if !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	req, err := steepshot.NewSearchCategoriesRequest(id, pos[0], page())
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.SearchCategories(ctx, req))
}

func (a *app) lowRated(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("low-rated", flag.ContinueOnError)
	set := fs.String("set", "", "true or false; omit to read the current value")
	if _, ok := a.flags(fs, args); !ok {
		return 2
	}
	id, err := a.sessionID(true)
	if err != nil {
		return a.fail(err)
	}

	if *set == "" {
		req, err := steepshot.NewIsLowRatedRequest(id)
		if err != nil {
			return a.fail(err)
		}
		return emit(a, a.client.IsLowRated(ctx, req))
	}

	show, err := strconv.ParseBool(*set)
	if err != nil {
		return a.fail(fmt.Errorf("invalid -set value %q: %w", *set, err))
	}
	req, err := steepshot.NewSetLowRatedRequest(id, show)
	if err != nil {
		return a.fail(err)
	}
	return emit(a, a.client.SetLowRated(ctx, req))
}

type feedOutput struct {
	Success    bool                                            `json:"success"`
	Posts      *steepshot.Result[steepshot.PostsResponse]      `json:"posts"`
	Categories *steepshot.Result[steepshot.CategoriesResponse] `json:"categories"`
}

// feed fetches the top posts and the top categories concurrently.
func (a *app) feed(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	limit := fs.Int("limit", 0, "page size for both listings")
	if _, ok := a.flags(fs, args); !ok {
		return 2
	}
	id, err := a.sessionID(false)
	if err != nil {
		return a.fail(err)
	}
	postsReq, err := steepshot.NewTopPostsRequest(id, steepshot.Page{Limit: *limit})
	if err != nil {
		return a.fail(err)
	}
	catReq, err := steepshot.NewCategoriesRequest(id, steepshot.Page{Limit: *limit})
	if err != nil {
		return a.fail(err)
	}

	// Each listing keeps its own outcome; one failing must not cancel the other.
	var (
		out feedOutput
		g   errgroup.Group
	)
	g.Go(func() error {
		out.Posts = a.client.GetTopPosts(ctx, postsReq)
		return nil
	})
	g.Go(func() error {
		out.Categories = a.client.GetCategories(ctx, catReq)
		return nil
	})
	_ = g.Wait()

	out.Success = out.Posts.Success && out.Categories.Success
	if err := a.writeJSON(out); err != nil || !out.Success {
		return 1
	}
	return 0
}
