// Package poller feeds live chat pages into the session tracker.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sadopc/studyboard/internal/chat"
	"github.com/sadopc/studyboard/internal/tracker"
)

// DefaultRetryDelay is how long to wait after a failed or chat-less poll.
const DefaultRetryDelay = 15 * time.Second

type Fetcher interface {
	Fetch(ctx context.Context, pageToken string) (*chat.Page, error)
}

type Handler interface {
	Handle(msg chat.Message) (tracker.Event, error)
}

type State int

const (
	Starting State = iota
	Live
	Waiting
	Error
)

// Status is reported after every poll.
type Status struct {
	State    State
	Messages int
	Err      error
	At       time.Time
}

func (s Status) String() string {
	switch s.State {
	case Live:
		return fmt.Sprintf("Live (%d new)", s.Messages)
	case Waiting:
		return "Waiting for live chat"
	case Error:
		if s.Err != nil {
			return "Chat error: " + s.Err.Error()
		}
		return "Chat error"
	default:
		return "Starting"
	}
}

type Poller struct {
	fetcher    Fetcher
	handler    Handler
	log        *zap.Logger
	limiter    *rate.Limiter
	retryDelay time.Duration
	onStatus   func(Status)

	mu        sync.Mutex
	pageToken string
	status    Status
}

type Option func(*Poller)

func WithRetryDelay(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.retryDelay = d
		}
	}
}

// OnStatus registers fn to be called after every poll.
func OnStatus(fn func(Status)) Option {
	return func(p *Poller) { p.onStatus = fn }
}

func New(f Fetcher, h Handler, log *zap.Logger, opts ...Option) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Poller{
		fetcher:    f,
		handler:    h,
		log:        log,
		limiter:    rate.NewLimiter(rate.Every(chat.DefaultPollingInterval), 1),
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status returns the outcome of the most recent poll.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run polls until ctx is done. Fetch and handler failures are reported
// through the status and retried; Run only returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("chat poller started")
	defer p.log.Info("chat poller stopped")

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			<-ctx.Done()
			return ctx.Err()
		}
		p.poll(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	p.mu.Lock()
	token := p.pageToken
	p.mu.Unlock()

	pollsTotal.Inc()
	page, err := p.fetcher.Fetch(ctx, token)
	if ctx.Err() != nil {
		return
	}

	switch {
	case errors.Is(err, chat.ErrNoLiveChat):
		pollErrors.WithLabelValues("no_live_chat").Inc()
		p.limiter.SetLimit(rate.Every(p.retryDelay))
		p.setToken("")
		p.report(Status{State: Waiting, At: time.Now()})
		return
	case err != nil:
		pollErrors.WithLabelValues("fetch").Inc()
		p.log.Warn("fetch chat failed", zap.Error(err))
		p.limiter.SetLimit(rate.Every(p.retryDelay))
		p.report(Status{State: Error, Err: err, At: time.Now()})
		return
	}

	for _, msg := range page.Messages {
		ev, err := p.handler.Handle(msg)
		if err != nil {
			pollErrors.WithLabelValues("handle").Inc()
			p.log.Warn("handle chat message failed", zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		messagesTotal.WithLabelValues(ev.Outcome.String()).Inc()
	}

	interval := page.PollingInterval
	if interval <= 0 {
		interval = chat.DefaultPollingInterval
	}
	p.limiter.SetLimit(rate.Every(interval))
	p.setToken(page.NextPageToken)
	p.report(Status{State: Live, Messages: len(page.Messages), At: time.Now()})
}

func (p *Poller) setToken(token string) {
	p.mu.Lock()
	p.pageToken = token
	p.mu.Unlock()
}

func (p *Poller) report(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
	if p.onStatus != nil {
		p.onStatus(s)
	}
}
