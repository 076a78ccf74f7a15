package mockapi

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	alreadyVoted   = "You have either used the maximum number of vote changes on this comment or performed the same action twice."
	wrongID        = "Wrong identifier."
	badCredentials = "Unable to login with provided credentials."
	blankField     = "This field may not be blank."
)

type credentials struct {
	PostingKey string `json:"posting_key"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {badCredentials}})
		return
	}

	if req.Username != CookielessUsername {
		s.newSession(w, req.Username)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User was logged in.", "username": req.Username})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}

	var errs fieldErrors
	switch {
	case strings.TrimSpace(req.PostingKey) == "":
		errs.add("posting_key", blankField)
	case len(req.PostingKey) != 51 || req.PostingKey[0] != '5':
		errs.add("posting_key", "Invalid posting key.")
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Username]
	s.mu.Unlock()
	switch {
	case strings.TrimSpace(req.Username) == "":
		errs.add("username", blankField)
	case exists:
		errs.add("username", "A user with that username already exists.")
	}

	switch {
	case req.Password == "":
		errs.add("password", blankField)
	case len(req.Password) < 8:
		errs.add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if req.Password != "" && strings.IndexFunc(req.Password, func(c rune) bool { return !unicode.IsDigit(c) }) < 0 {
		errs.add("password", "This password is entirely numeric.")
	}

	if !errs.empty() {
		writeJSON(w, http.StatusBadRequest, &errs)
		return
	}

	s.mu.Lock()
	s.accounts[req.Username] = account{password: req.Password}
	s.mu.Unlock()
	s.newSession(w, req.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username, "message": "User was registered."})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	sessionID, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "User is logged out"})
}

// postsHandler serves posts/top, posts/hot and posts/new.
func (s *Server) postsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	var feed []post
	switch strings.TrimPrefix(r.URL.Path, s.prefix+"posts/") {
	case "top":
		feed = topPosts
	case "hot":
		feed = append(append([]post{}, topPosts[TopPostCount/2:]...), topPosts[:TopPostCount/2]...)
	case "new":
		feed = reversed(topPosts)
	default:
		notFoundHandler(w, r)
		return
	}

	results, next := page(r, feed, postKey)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "offset": next, "results": results})
}

// userHandler serves everything under user/.
func (s *Server) userHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, s.prefix+"user/")
	if rest == "low_rated" {
		s.lowRatedHandler(w, r)
		return
	}

	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		notFoundHandler(w, r)
		return
	}
	username, action := parts[0], parts[1]

	s.mu.Lock()
	_, known := s.accounts[username]
	s.mu.Unlock()

	switch action {
	case "posts":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		if !known {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		var own []post
		for _, p := range topPosts {
			if p.Author == username {
				own = append(own, p)
			}
		}
		results, next := page(r, own, postKey)
		writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "offset": next, "results": results})
	case "followers", "following":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		if !known {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		// has_followed is relative to the caller, so anonymous listings report false.
		_, me, _ := s.sessionUser(r)
		s.mu.Lock()
		followed := s.follows[me]
		var friends []friend
		for _, name := range []string{"bob", "carol", "dave", "erin"} {
			if name != username {
				friends = append(friends, friend{
					Author:      name,
					Avatar:      "https://img.example/avatars/" + name + ".png",
					HasFollowed: followed[name],
				})
			}
		}
		s.mu.Unlock()
		results, next := page(r, friends, func(f friend) string { return f.Author })
		writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "offset": next, "results": results})
	case "follow", "unfollow":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}
		_, me, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		if !known {
			writeDetail(w, http.StatusNotFound, "Not found.")
			return
		}
		s.mu.Lock()
		if s.follows[me] == nil {
			s.follows[me] = map[string]bool{}
		}
		s.follows[me][username] = action == "follow"
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "User is " + action + "ed"})
	default:
		notFoundHandler(w, r)
	}
}

func (s *Server) lowRatedHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		show := s.lowRated[sessionID]
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"show_low_rated": show})
	case http.MethodPost:
		var req struct {
			ShowLowRated *bool `json:"show_low_rated"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShowLowRated == nil {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"show_low_rated": {"This field is required."}})
			return
		}
		s.mu.Lock()
		s.lowRated[sessionID] = *req.ShowLowRated
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Show low rated checkbox has been set"})
	default:
		methodNotAllowed(w, r)
	}
}

// postActionHandler serves post/{identifier}/{upvote,downvote,comments,comment}.
func (s *Server) postActionHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, s.prefix+"post/")
	identifier, action := path.Split(rest)
	identifier = strings.Trim(identifier, "/")
	if identifier == "" {
		methodNotAllowed(w, r)
		return
	}

	switch action {
	case "upvote", "downvote":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}
		s.vote(w, r, identifier, action)
	case "comments":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		if !strings.Contains(identifier, "/@") && !strings.HasPrefix(identifier, "@") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": wrongID})
			return
		}
		s.mu.Lock()
		comments := append([]post{}, s.comments[commentKey(identifier)]...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"count": len(comments), "results": comments})
	case "comment":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r)
			return
		}
		s.comment(w, r, identifier)
	default:
		notFoundHandler(w, r)
	}
}

// commentKey drops the category so /life/@bob/x and @bob/x address the same post.
func commentKey(identifier string) string {
	if i := strings.Index(identifier, "@"); i > 0 {
		return strings.Trim(identifier, "/")
	}
	for _, p := range topPosts {
		if strings.HasSuffix(p.URL, "/"+identifier) {
			return strings.Trim(p.URL, "/")
		}
	}
	return identifier
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request, identifier, action string) {
	sessionID, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	parts := strings.Split(identifier, "/")
	if len(parts) < 2 || !strings.HasPrefix(parts[1], "@") {
		serverError(w)
		return
	}
	if len(parts) != 3 || parts[1] == "@" || parts[2] == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"identifier": {"Invalid identifier"}})
		return
	}

	key := sessionID + "|" + identifier
	s.mu.Lock()
	last := s.votes[key]
	if last == action {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": alreadyVoted})
		return
	}
	s.votes[key] = action
	s.mu.Unlock()

	reward := "1.000 SBD"
	if action == "downvote" {
		reward = "0.500 SBD"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "new_total_payout_reward": reward})
}

func (s *Server) comment(w http.ResponseWriter, r *http.Request, identifier string) {
	_, username, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if parts := strings.Split(identifier, "/"); len(parts) != 3 || !strings.HasPrefix(parts[1], "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": wrongID})
		return
	}

	var req struct {
		Body  string `json:"body"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}

	var errs fieldErrors
	if strings.TrimSpace(req.Body) == "" {
		errs.add("body", blankField)
	}
	if strings.TrimSpace(req.Title) == "" {
		errs.add("title", blankField)
	}
	if !errs.empty() {
		writeJSON(w, http.StatusBadRequest, &errs)
		return
	}

	key := commentKey(identifier)
	s.mu.Lock()
	s.comments[key] = append(s.comments[key], post{
		Body:     req.Body,
		Title:    req.Title,
		URL:      "/" + identifier + "#@" + username + "/" + uuid.New().String(),
		Author:   username,
		Category: strings.Split(identifier, "/")[0],
		Replies:  []string{},
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Comment created"})
}

// uploadHandler serves the multipart photo upload at post.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if _, _, ok := s.requireSession(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "Multipart form parse error - "+err.Error())
		return
	}

	var errs fieldErrors
	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		errs.add("title", blankField)
	}
	file, hdr, err := r.FormFile("photo")
	if err != nil {
		errs.add("photo", "No file was submitted.")
	} else {
		file.Close()
	}
	if !errs.empty() {
		writeJSON(w, http.StatusBadRequest, &errs)
		return
	}

	tags := r.MultipartForm.Value["tags"]
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"title": title,
		"photo": "https://img.example/" + uuid.New().String() + "-" + hdr.Filename,
		"tags":  tags,
	})
}

// categoriesHandler serves categories/top and categories/search.
func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, s.prefix+"categories/") {
	case "top":
		results, next := page(r, categories, func(c category) string { return c.Name })
		writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "offset": next, "results": results})
	case "search":
		query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
		if len([]rune(query)) < 3 {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"query": {"Min length is 3"}})
			return
		}
		var matched []category
		for _, c := range categories {
			if strings.Contains(c.Name, query) {
				matched = append(matched, c)
			}
		}
		results, next := page(r, matched, func(c category) string { return c.Name })
		writeJSON(w, http.StatusOK, map[string]any{
			"count":       len(results),
			"total_count": len(matched),
			"offset":      next,
			"results":     results,
		})
	default:
		notFoundHandler(w, r)
	}
}
