// Package chat reads YouTube live chat messages through the Data API v3.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// DefaultPollingInterval is used when the API does not suggest one.
const DefaultPollingInterval = 5000 * time.Millisecond

// ErrNoLiveChat means the video has no active live chat right now.
var ErrNoLiveChat = errors.New("no live chat found")

type Message struct {
	ID                string `json:"id"`
	AuthorDisplayName string `json:"authorDisplayName"`
	DisplayMessage    string `json:"displayMessage"`
	PublishedAt       string `json:"publishedAt"`
	ProfileImageURL   string `json:"profileImageUrl"`
}

// Published parses PublishedAt. The zero time is returned when it is missing or malformed.
func (m Message) Published() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Page is one batch of chat messages.
type Page struct {
	Messages        []Message
	NextPageToken   string
	PollingInterval time.Duration
}

// Client fetches chat pages for a single video. The live chat ID is looked up
// once and cached until the API reports the chat gone.
type Client struct {
	svc     *youtube.Service
	videoID string

	mu     sync.Mutex
	chatID string
}

func NewClient(ctx context.Context, videoID string, opts ...option.ClientOption) (*Client, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, videoID: videoID}, nil
}

// Fetch returns the messages after pageToken. An empty token starts from the
// messages the API currently holds.
func (c *Client) Fetch(ctx context.Context, pageToken string) (*Page, error) {
	chatID, err := c.liveChatID(ctx)
	if err != nil {
		return nil, err
	}

	call := c.svc.LiveChatMessages.List(chatID, []string{"snippet", "authorDetails"}).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusNotFound) {
			c.resetChatID()
			return nil, fmt.Errorf("list chat messages: %w", ErrNoLiveChat)
		}
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	page := &Page{
		Messages:        make([]Message, 0, len(resp.Items)),
		NextPageToken:   resp.NextPageToken,
		PollingInterval: time.Duration(resp.PollingIntervalMillis) * time.Millisecond,
	}
	if page.PollingInterval <= 0 {
		page.PollingInterval = DefaultPollingInterval
	}
	for _, item := range resp.Items {
		page.Messages = append(page.Messages, toMessage(item))
	}
	return page, nil
}

func toMessage(item *youtube.LiveChatMessage) Message {
	m := Message{ID: item.Id}
	if item.Snippet != nil {
		m.DisplayMessage = item.Snippet.DisplayMessage
		m.PublishedAt = item.Snippet.PublishedAt
	}
	if item.AuthorDetails != nil {
		m.AuthorDisplayName = item.AuthorDetails.DisplayName
		m.ProfileImageURL = item.AuthorDetails.ProfileImageUrl
	}
	return m
}

func (c *Client) liveChatID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.chatID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	resp, err := c.svc.Videos.List([]string{"liveStreamingDetails"}).Id(c.videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("lookup video %s: %v: %w", c.videoID, err, ErrNoLiveChat)
	}
	var chatID string
	if len(resp.Items) > 0 && resp.Items[0].LiveStreamingDetails != nil {
		chatID = resp.Items[0].LiveStreamingDetails.ActiveLiveChatId
	}
	if chatID == "" {
		return "", fmt.Errorf("video %s: %w", c.videoID, ErrNoLiveChat)
	}

	c.mu.Lock()
	c.chatID = chatID
	c.mu.Unlock()
	return chatID, nil
}

func (c *Client) resetChatID() {
	c.mu.Lock()
	c.chatID = ""
	c.mu.Unlock()
}
