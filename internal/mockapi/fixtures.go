package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type post struct {
	Body               string   `json:"body"`
	Title              string   `json:"title"`
	URL                string   `json:"url"`
	Category           string   `json:"category"`
	Author             string   `json:"author"`
	Avatar             string   `json:"avatar"`
	AuthorRewards      int      `json:"author_rewards"`
	AuthorReputation   int      `json:"author_reputation"`
	NetVotes           int      `json:"net_votes"`
	Children           int      `json:"children"`
	Created            string   `json:"created"`
	CuratorPayoutValue string   `json:"curator_payout_value"`
	TotalPayoutValue   string   `json:"total_payout_value"`
	PendingPayoutValue string   `json:"pending_payout_value"`
	Replies            []string `json:"replies"`
	Tags               []string `json:"tags"`
	Vote               bool     `json:"vote"`
}

type category struct {
	Name string `json:"name"`
}

type friend struct {
	Author      string `json:"author"`
	Avatar      string `json:"avatar"`
	HasFollowed bool   `json:"has_followed"`
}

// Fixture feed sizes, exported for tests.
const (
	TopPostCount   = 15
	CategoryCount  = 12
	UserPostCount  = 3
	CommentedPost  = "/life/@bob/post-1"
	CommentCount   = 2
	FollowersCount = 4
)

var (
	topPosts      []post
	categories    []category
	categoryNames = []string{
		"life", "photography", "travel", "food", "art", "nature",
		"music", "steemit", "photo", "portrait", "street", "macro",
	}
)

func init() {
	others := []string{"bob", "carol", "dave"}
	for i := 1; i <= TopPostCount; i++ {
		author := others[i%len(others)]
		switch {
		case i == 1:
			author = "bob"
		case i <= UserPostCount+1:
			author = Username
		}
		cat := categoryNames[(i-1)%len(categoryNames)]
		slug := fmt.Sprintf("post-%d", i)
		topPosts = append(topPosts, post{
			Body:               fmt.Sprintf("https://img.example/%s.jpg", slug),
			Title:              fmt.Sprintf("Post %d", i),
			URL:                fmt.Sprintf("/%s/@%s/%s", cat, author, slug),
			Category:           cat,
			Author:             author,
			Avatar:             fmt.Sprintf("https://img.example/avatars/%s.png", author),
			AuthorRewards:      100 * i,
			AuthorReputation:   50 + i,
			NetVotes:           TopPostCount - i,
			Children:           0,
			Created:            fmt.Sprintf("2017-01-%02dT12:00:00", i),
			CuratorPayoutValue: "0.000 SBD",
			TotalPayoutValue:   fmt.Sprintf("%d.000 SBD", i),
			PendingPayoutValue: "0.000 SBD",
			Replies:            []string{},
			Tags:               []string{cat},
		})
	}
	for _, name := range categoryNames {
		categories = append(categories, category{Name: name})
	}
}

// seed installs the fixture accounts and comments. Called once from NewServer.
func (s *Server) seed() {
	s.accounts[Username] = account{password: Password}
	s.accounts["bob"] = account{password: "password99"}
	s.accounts["carol"] = account{password: "password99"}
	s.accounts["dave"] = account{password: "password99"}
	s.accounts[CookielessUsername] = account{password: CookielessPassword}

	key := strings.Trim(CommentedPost, "/")
	for i := 1; i <= CommentCount; i++ {
		s.comments[key] = append(s.comments[key], post{
			Body:     fmt.Sprintf("comment %d", i),
			Title:    "",
			URL:      fmt.Sprintf("%s#@carol/re-post-1-%d", CommentedPost, i),
			Category: "life",
			Author:   "carol",
			Replies:  []string{},
		})
	}
}

// page applies offset/limit query parameters. The offset is inclusive: it
// names the first item of the requested page. next is the offset of the
// following page, empty on the last page.
func page[T any](r *http.Request, items []T, key func(T) string) (out []T, next string) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}

	start := 0
	if offset := r.URL.Query().Get("offset"); offset != "" {
		start = len(items)
		for i, item := range items {
			if key(item) == offset {
				start = i
				break
			}
		}
	}

	end := len(items)
	if limit < end-start {
		end = start + limit
	}
	if end < len(items) {
		next = key(items[end])
	}
	return append([]T{}, items[start:end]...), next
}

func postKey(p post) string { return p.URL }

func reversed[T any](items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
