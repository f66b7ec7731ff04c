// Package instagramtest provides an in-memory Instagram web API for tests.
package instagramtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// QueryHash must match the hash the client sends for media pages
const QueryHash = "e769aa130647d2354c40ea6a439bfc08"

// Post is one timeline post served by the fake
type Post struct {
	Likes    int
	Comments int
	TakenAt  time.Time
	Caption  string
	IsVideo  bool
}

// Profile is a user served by the fake
type Profile struct {
	Username  string
	ID        string
	Followers int
	Private   bool
	Posts     []Post
}

type failure struct {
	status  int
	message string
}

// Server simulates the profile, media and login endpoints
type Server struct {
	*httptest.Server

	mu            sync.RWMutex
	profiles      map[string]*Profile
	byID          map[string]*Profile
	failures      map[string]failure
	accounts      map[string]string
	challenge     bool
	pageSize      int
	requestCount  int32
	mediaRequests int32
	lastCookie    atomic.Value
}

// NewServer starts a fake Instagram server
func NewServer() *Server {
	s := &Server{
		profiles: make(map[string]*Profile),
		byID:     make(map[string]*Profile),
		failures: make(map[string]failure),
		accounts: make(map[string]string),
		pageSize: 12,
	}
	s.lastCookie.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/web_profile_info/", s.handleProfile)
	mux.HandleFunc("/graphql/query/", s.handleMedia)
	mux.HandleFunc("/accounts/login/ajax/", s.handleLogin)
	mux.HandleFunc("/accounts/login/", s.handleLoginPage)

	s.Server = httptest.NewServer(mux)
	return s
}

// AddProfile registers a profile. An empty ID is derived from the username.
func (s *Server) AddProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = fmt.Sprintf("id-%s", p.Username)
	}
	profile := p
	s.profiles[p.Username] = &profile
	s.byID[p.ID] = &profile
}

// SetPageSize sets how many posts the profile response and each media page carry
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailProfile makes profile lookups for username return status with message
func (s *Server) FailProfile(username string, status int, message string) {
	s.setFailure("profile:"+username, status, message)
}

// FailMedia makes media pages for userID return status with message
func (s *Server) FailMedia(userID string, status int, message string) {
	s.setFailure("media:"+userID, status, message)
}

// AddAccount registers a login that succeeds
func (s *Server) AddAccount(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = password
}

// RequireChallenge makes every correct login end in a checkpoint
func (s *Server) RequireChallenge(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenge = on
}

// RequestCount returns how many requests the server handled
func (s *Server) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

// MediaRequestCount returns how many media pages were requested
func (s *Server) MediaRequestCount() int {
	return int(atomic.LoadInt32(&s.mediaRequests))
}

// LastCookie returns the Cookie header of the latest data request
func (s *Server) LastCookie() string {
	return s.lastCookie.Load().(string)
}

func (s *Server) setFailure(key string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = failure{status: status, message: message}
}

func (s *Server) failureFor(key string) (failure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.failures[key]
	return f, ok
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)
	s.lastCookie.Store(r.Header.Get("Cookie"))

	username := r.URL.Query().Get("username")
	if f, ok := s.failureFor("profile:" + username); ok {
		writeFailure(w, f)
		return
	}

	s.mu.RLock()
	p, ok := s.profiles[username]
	pageSize := s.pageSize
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"message": "User not found",
			"status":  "fail",
		})
		return
	}

	media := map[string]interface{}{
		"count":     len(p.Posts),
		"edges":     []interface{}{},
		"page_info": map[string]interface{}{"has_next_page": false, "end_cursor": ""},
	}
	if !p.Private {
		media = page(p, 0, pageSize)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"id":                           p.ID,
				"username":                     p.Username,
				"is_private":                   p.Private,
				"followed_by_viewer":           false,
				"edge_followed_by":             map[string]int{"count": p.Followers},
				"edge_owner_to_timeline_media": media,
			},
		},
		"status": "ok",
	})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)
	atomic.AddInt32(&s.mediaRequests, 1)
	s.lastCookie.Store(r.Header.Get("Cookie"))

	if r.URL.Query().Get("query_hash") != QueryHash {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var variables struct {
		ID    string `json:"id"`
		First int    `json:"first"`
		After string `json:"after"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("variables")), &variables); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if f, ok := s.failureFor("media:" + variables.ID); ok {
		writeFailure(w, f)
		return
	}

	s.mu.RLock()
	p, ok := s.byID[variables.ID]
	pageSize := s.pageSize
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"user": nil}, "status": "ok"})
		return
	}

	offset := 0
	if strings.HasPrefix(variables.After, "cursor-") {
		offset, _ = strconv.Atoi(strings.TrimPrefix(variables.After, "cursor-"))
	}
	if variables.First > 0 && variables.First < pageSize {
		pageSize = variables.First
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{
				"edge_owner_to_timeline_media": page(p, offset, pageSize),
			},
		},
		"status": "ok",
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)
	http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "test-csrf"})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.requestCount, 1)

	if r.Method != http.MethodPost || r.Header.Get("X-CSRFToken") == "" {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"message": "CSRF token missing", "status": "fail"})
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	username := r.PostForm.Get("username")
	encPassword := r.PostForm.Get("enc_password")
	password := encPassword
	if parts := strings.SplitN(encPassword, ":", 4); len(parts) == 4 {
		password = parts[3]
	}

	s.mu.RLock()
	expected, known := s.accounts[username]
	challenge := s.challenge
	s.mu.RUnlock()

	switch {
	case !known:
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false, "user": false, "status": "ok"})
	case expected != password:
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false, "user": true, "status": "ok"})
	case challenge:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":        "checkpoint_required",
			"checkpoint_url": "/challenge/123/",
			"status":         "fail",
		})
	default:
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "session-" + username})
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "post-login-csrf"})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": true,
			"user":          true,
			"userId":        "42",
			"status":        "ok",
		})
	}
}

func page(p *Profile, offset, size int) map[string]interface{} {
	if offset > len(p.Posts) {
		offset = len(p.Posts)
	}
	end := offset + size
	if end > len(p.Posts) {
		end = len(p.Posts)
	}

	edges := make([]interface{}, 0, end-offset)
	for i := offset; i < end; i++ {
		edges = append(edges, map[string]interface{}{"node": node(p, i)})
	}

	cursor := ""
	if end < len(p.Posts) {
		cursor = fmt.Sprintf("cursor-%d", end)
	}

	return map[string]interface{}{
		"count": len(p.Posts),
		"edges": edges,
		"page_info": map[string]interface{}{
			"has_next_page": end < len(p.Posts),
			"end_cursor":    cursor,
		},
	}
}

func node(p *Profile, i int) map[string]interface{} {
	post := p.Posts[i]

	captionEdges := []interface{}{}
	if post.Caption != "" {
		captionEdges = append(captionEdges, map[string]interface{}{
			"node": map[string]string{"text": post.Caption},
		})
	}

	return map[string]interface{}{
		"id":                      fmt.Sprintf("%s-%d", p.ID, i),
		"shortcode":               fmt.Sprintf("SC%s%d", p.Username, i),
		"is_video":                post.IsVideo,
		"taken_at_timestamp":      post.TakenAt.Unix(),
		"edge_liked_by":           map[string]int{"count": post.Likes},
		"edge_media_preview_like": map[string]int{"count": post.Likes},
		"edge_media_to_comment":   map[string]int{"count": post.Comments},
		"edge_media_to_caption":   map[string]interface{}{"edges": captionEdges},
	}
}

func writeFailure(w http.ResponseWriter, f failure) {
	if f.status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	body := map[string]interface{}{"status": "fail"}
	if f.message != "" {
		body["message"] = f.message
	}
	writeJSON(w, f.status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
