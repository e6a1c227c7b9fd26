package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"
)

// fakeAPI serves the two Data API endpoints the client uses.
type fakeAPI struct {
	mu         sync.Mutex
	videoBody  string
	chatStatus int
	chatBody   string
	videoCalls int
	pageTokens []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/youtube/v3/videos"):
		f.videoCalls++
		w.Write([]byte(f.videoBody))
	case strings.HasSuffix(r.URL.Path, "/youtube/v3/liveChat/messages"):
		f.pageTokens = append(f.pageTokens, r.URL.Query().Get("pageToken"))
		if f.chatStatus != 0 {
			w.WriteHeader(f.chatStatus)
		}
		w.Write([]byte(f.chatBody))
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), "video1",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

const liveVideo = `{"items":[{"id":"video1","liveStreamingDetails":{"activeLiveChatId":"chat1"}}]}`

// ============================================================
// Fetch
// ============================================================

func TestFetchMessages(t *testing.T) {
	api := &fakeAPI{
		videoBody: liveVideo,
		chatBody: `{
			"nextPageToken": "tok2",
			"pollingIntervalMillis": 3000,
			"items": [
				{
					"id": "m1",
					"snippet": {"displayMessage": "start", "publishedAt": "2024-01-10T09:00:00Z"},
					"authorDetails": {"displayName": "Alice", "profileImageUrl": "https://img/alice"}
				},
				{"id": "m2"}
			]
		}`,
	}
	c := newTestClient(t, api)

	page, err := c.Fetch(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if page.NextPageToken != "tok2" {
		t.Fatalf("next token = %q", page.NextPageToken)
	}
	if page.PollingInterval != 3*time.Second {
		t.Fatalf("polling interval = %v", page.PollingInterval)
	}
	if len(page.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page.Messages))
	}

	m := page.Messages[0]
	if m.ID != "m1" || m.AuthorDisplayName != "Alice" || m.DisplayMessage != "start" || m.ProfileImageURL != "https://img/alice" {
		t.Fatalf("unexpected message: %+v", m)
	}
	want := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if !m.Published().Equal(want) {
		t.Fatalf("published = %v, want %v", m.Published(), want)
	}

	bare := page.Messages[1]
	if bare.AuthorDisplayName != "" || bare.DisplayMessage != "" || bare.PublishedAt != "" {
		t.Fatalf("missing fields should be empty: %+v", bare)
	}
	if !bare.Published().IsZero() {
		t.Fatal("missing publishedAt should parse to zero time")
	}
}

func TestFetchDefaultPollingInterval(t *testing.T) {
	api := &fakeAPI{videoBody: liveVideo, chatBody: `{"items":[]}`}
	c := newTestClient(t, api)

	page, err := c.Fetch(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if page.PollingInterval != DefaultPollingInterval {
		t.Fatalf("polling interval = %v, want %v", page.PollingInterval, DefaultPollingInterval)
	}
	if page.Messages == nil || len(page.Messages) != 0 {
		t.Fatalf("expected empty message slice, got %v", page.Messages)
	}
}

func TestFetchCachesChatIDAndPassesToken(t *testing.T) {
	api := &fakeAPI{videoBody: liveVideo, chatBody: `{"items":[]}`}
	c := newTestClient(t, api)

	c.Fetch(context.Background(), "")
	c.Fetch(context.Background(), "tok2")

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.videoCalls != 1 {
		t.Fatalf("expected 1 video lookup, got %d", api.videoCalls)
	}
	if len(api.pageTokens) != 2 || api.pageTokens[0] != "" || api.pageTokens[1] != "tok2" {
		t.Fatalf("page tokens = %v", api.pageTokens)
	}
}

func TestFetchNoActiveChat(t *testing.T) {
	api := &fakeAPI{videoBody: `{"items":[{"id":"video1","liveStreamingDetails":{}}]}`}
	c := newTestClient(t, api)

	_, err := c.Fetch(context.Background(), "")
	if !errors.Is(err, ErrNoLiveChat) {
		t.Fatalf("expected ErrNoLiveChat, got %v", err)
	}
}

func TestFetchUnknownVideo(t *testing.T) {
	api := &fakeAPI{videoBody: `{"items":[]}`}
	c := newTestClient(t, api)

	_, err := c.Fetch(context.Background(), "")
	if !errors.Is(err, ErrNoLiveChat) {
		t.Fatalf("expected ErrNoLiveChat, got %v", err)
	}
}

func TestFetchChatEndedResetsCache(t *testing.T) {
	api := &fakeAPI{
		videoBody:  liveVideo,
		chatStatus: http.StatusForbidden,
		chatBody:   `{"error":{"code":403,"message":"The live chat is no longer live."}}`,
	}
	c := newTestClient(t, api)

	_, err := c.Fetch(context.Background(), "")
	if !errors.Is(err, ErrNoLiveChat) {
		t.Fatalf("expected ErrNoLiveChat, got %v", err)
	}

	api.mu.Lock()
	api.chatStatus = 0
	api.chatBody = `{"items":[]}`
	api.mu.Unlock()

	if _, err := c.Fetch(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.videoCalls != 2 {
		t.Fatalf("expected chat ID lookup to repeat, got %d lookups", api.videoCalls)
	}
}

func TestFetchServerError(t *testing.T) {
	api := &fakeAPI{
		videoBody:  liveVideo,
		chatStatus: http.StatusInternalServerError,
		chatBody:   `{"error":{"code":500,"message":"backend"}}`,
	}
	c := newTestClient(t, api)

	_, err := c.Fetch(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoLiveChat) {
		t.Fatal("server error should not read as a missing chat")
	}
}
