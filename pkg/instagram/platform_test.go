package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"instascraper/pkg/config"
	"instascraper/pkg/logger"
)

// recordedRequest is what the fake platform saw of one request
type recordedRequest struct {
	Method    string
	Path      string
	Query     map[string][]string
	Header    http.Header
	Form      map[string][]string
	QueryHash string
	Variables map[string]any
}

type graphqlHandler func(w http.ResponseWriter, vars map[string]any)

// fakePlatform imitates the web endpoints a Session talks to
type fakePlatform struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
	queries  map[string]graphqlHandler
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	fp := &fakePlatform{
		routes:  make(map[string]http.HandlerFunc),
		queries: make(map[string]graphqlHandler),
	}
	fp.handle("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "token-1", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	fp.Server = httptest.NewServer(http.HandlerFunc(fp.serve))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakePlatform) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Form:   r.PostForm,
	}
	if r.URL.Path == "/"+graphqlPath {
		rec.QueryHash = r.URL.Query().Get("query_hash")
		_ = json.Unmarshal([]byte(r.URL.Query().Get("variables")), &rec.Variables)
	}

	fp.mu.Lock()
	fp.requests = append(fp.requests, rec)
	route := fp.routes[r.URL.Path]
	query := fp.queries[rec.QueryHash]
	fp.mu.Unlock()

	switch {
	case rec.QueryHash != "" && query != nil:
		query(w, rec.Variables)
	case rec.QueryHash == "" && route != nil:
		route(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (fp *fakePlatform) handle(path string, h http.HandlerFunc) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.routes[path] = h
}

func (fp *fakePlatform) query(hash string, h graphqlHandler) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.queries[hash] = h
}

func (fp *fakePlatform) recorded() []recordedRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	out := make([]recordedRequest, len(fp.requests))
	copy(out, fp.requests)
	return out
}

func (fp *fakePlatform) recordedQueries(hash string) []recordedRequest {
	var out []recordedRequest
	for _, r := range fp.recorded() {
		if r.QueryHash == hash {
			out = append(out, r)
		}
	}
	return out
}

func (fp *fakePlatform) clear() {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.requests = nil
}

func newTestSession(t *testing.T, fp *fakePlatform, opts ...SessionOption) *Session {
	t.Helper()

	cfg := config.InstagramConfig{
		BaseURL:    fp.URL + "/",
		APIBaseURL: fp.URL,
		Timeout:    5 * time.Second,
	}
	s, err := NewSession(cfg, logger.NewTestLogger(), opts...)
	require.NoError(t, err)
	return s
}

// newGuestSession returns a session logged in as guest with no recorded requests
func newGuestSession(t *testing.T, fp *fakePlatform, opts ...SessionOption) *Session {
	t.Helper()

	s := newTestSession(t, fp, opts...)
	require.NoError(t, s.Login(context.Background(), Guest{}))
	fp.clear()
	return s
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func intVar(vars map[string]any, key string) int {
	f, _ := vars[key].(float64)
	return int(f)
}

func postNode(id string) map[string]any {
	return map[string]any{
		"id":        id,
		"shortcode": "sc" + id,
		"edge_media_to_caption": map[string]any{
			"edges": []any{map[string]any{"node": map[string]any{"text": "caption " + id}}},
		},
		"comments_disabled":       false,
		"taken_at_timestamp":      1700000000,
		"dimensions":              map[string]any{"height": 1080, "width": 1080},
		"display_url":             "https://cdn.example.com/" + id + ".jpg",
		"edge_media_to_comment":   map[string]any{"count": 3},
		"edge_media_preview_like": map[string]any{"count": 10},
		"thumbnail_src":           "https://cdn.example.com/" + id + "_thumb.jpg",
		"is_video":                false,
	}
}

func postsPayload(edges []any, pageInfo map[string]any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"edge_owner_to_timeline_media": map[string]any{
					"edges":     edges,
					"page_info": pageInfo,
				},
			},
		},
	}
}

// timeline serves total posts honoring first and after, using item offsets as cursors
func timeline(total int) graphqlHandler {
	return func(w http.ResponseWriter, vars map[string]any) {
		start := 0
		if after, _ := vars["after"].(string); after != "" {
			start, _ = strconv.Atoi(after)
		}
		end := min(start+intVar(vars, "first"), total)

		edges := []any{}
		for i := start; i < end; i++ {
			edges = append(edges, map[string]any{"node": postNode(strconv.Itoa(i + 1))})
		}
		writeJSON(w, postsPayload(edges, map[string]any{
			"end_cursor":    strconv.Itoa(end),
			"has_next_page": end < total,
		}))
	}
}

func storyItem(id string) map[string]any {
	return map[string]any{
		"display_resources": []any{
			map[string]any{"config_height": 640, "config_width": 360, "src": "https://cdn.example.com/" + id + "_s.jpg"},
			map[string]any{"config_height": 1920, "config_width": 1080, "src": "https://cdn.example.com/" + id + "_l.jpg"},
		},
		"display_url":           "https://cdn.example.com/" + id + ".jpg",
		"expiring_at_timestamp": 1700086400,
		"id":                    id,
		"is_video":              false,
		"taken_at_timestamp":    1700000000,
	}
}

func reelsPayload(reels ...[]any) map[string]any {
	media := []any{}
	for _, items := range reels {
		media = append(media, map[string]any{"items": items})
	}
	return map[string]any{"data": map[string]any{"reels_media": media}}
}
