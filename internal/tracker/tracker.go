// Package tracker turns chat messages into study sessions and visit stamps.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/studyboard/internal/chat"
	"github.com/sadopc/studyboard/internal/store"
	"github.com/sadopc/studyboard/internal/weekly"
)

// Outcome describes what Handle did with a message.
type Outcome int

const (
	Ignored Outcome = iota
	Duplicate
	Started
	AlreadyStudying
	Finished
	NotStudying
	Stamped
	AlreadyStamped
)

func (o Outcome) String() string {
	switch o {
	case Duplicate:
		return "duplicate"
	case Started:
		return "started"
	case AlreadyStudying:
		return "already studying"
	case Finished:
		return "finished"
	case NotStudying:
		return "not studying"
	case Stamped:
		return "stamped"
	case AlreadyStamped:
		return "already stamped"
	default:
		return "ignored"
	}
}

// Event is the result of handling one message.
type Event struct {
	Outcome Outcome
	Kind    Kind
	Viewer  string
	At      time.Time
	Date    string        // set for stamps
	Studied time.Duration // set when a session finishes
}

// Notifier is told about sessions starting and finishing and new stamps.
type Notifier interface {
	Notify(title, message string) error
}

// Store is the persistence the tracker writes to. *store.Store implements it.
type Store interface {
	Location() *time.Location
	HasMessage(id string) (bool, error)
	RecordMessage(m store.ChatMessage) (bool, error)
	UpsertViewer(name, imageURL string, seenAt time.Time) error
	StartSession(viewer string, at time.Time) (*store.Session, error)
	StopSession(viewer string, at time.Time) (*store.Session, error)
	AddVisitStamp(viewer, date string) (bool, error)
}

type Tracker struct {
	mu       sync.Mutex
	store    Store
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
	notifier Notifier
}

type Option func(*Tracker)

func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithClock sets the time used for messages without a publish time.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func New(s Store, log *zap.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{store: s, loc: s.Location(), now: time.Now, log: log}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle applies one chat message. Messages already seen (by ID) are
// reported as Duplicate and change nothing. A message enters the ledger only
// after its action succeeded, so a failed message is applied when it is
// handled again.
func (t *Tracker) Handle(msg chat.Message) (Event, error) {
	ev, note, err := t.handle(msg)
	if note != "" {
		t.notify(ev.Viewer, note)
	}
	return ev, err
}

// handle does the store work under the lock and returns the notification to
// send once the lock is released.
func (t *Tracker) handle(msg chat.Message) (Event, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kind := Classify(msg.DisplayMessage)
	at := msg.Published()
	if at.IsZero() {
		at = t.now()
	}
	ev := Event{Kind: kind, Viewer: msg.AuthorDisplayName, At: at}

	if msg.ID != "" {
		seen, err := t.store.HasMessage(msg.ID)
		if err != nil {
			return ev, "", err
		}
		if seen {
			ev.Outcome = Duplicate
			return ev, "", nil
		}
	}

	var note string
	var err error
	if kind == KindOther || msg.AuthorDisplayName == "" {
		ev.Outcome = Ignored
	} else {
		note, err = t.apply(&ev, msg.ProfileImageURL)
		if err != nil {
			return ev, "", err
		}
	}

	if msg.ID != "" {
		_, err := t.store.RecordMessage(store.ChatMessage{
			ID:          msg.ID,
			Author:      msg.AuthorDisplayName,
			Message:     msg.DisplayMessage,
			PublishedAt: at,
			Kind:        kind.String(),
		})
		if err != nil {
			return ev, note, err
		}
	}

	t.log.Debug("chat message handled",
		zap.String("viewer", ev.Viewer),
		zap.Stringer("kind", ev.Kind),
		zap.Stringer("outcome", ev.Outcome),
	)
	return ev, note, nil
}

func (t *Tracker) apply(ev *Event, imageURL string) (string, error) {
	if err := t.store.UpsertViewer(ev.Viewer, imageURL, ev.At); err != nil {
		return "", err
	}
	switch ev.Kind {
	case KindStart:
		return t.start(ev)
	case KindEnd:
		return t.end(ev)
	case KindGreeting:
		return t.stamp(ev)
	}
	return "", nil
}

func (t *Tracker) start(ev *Event) (string, error) {
	_, err := t.store.StartSession(ev.Viewer, ev.At)
	if errors.Is(err, store.ErrSessionOpen) {
		ev.Outcome = AlreadyStudying
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("start %s: %w", ev.Viewer, err)
	}
	ev.Outcome = Started
	return "started studying", nil
}

func (t *Tracker) end(ev *Event) (string, error) {
	sess, err := t.store.StopSession(ev.Viewer, ev.At)
	if errors.Is(err, store.ErrNoOpenSession) {
		ev.Outcome = NotStudying
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("end %s: %w", ev.Viewer, err)
	}
	ev.Outcome = Finished
	ev.Studied = time.Duration(sess.Duration) * time.Second
	return "finished: " + weekly.FormatClock(sess.Duration), nil
}

func (t *Tracker) stamp(ev *Event) (string, error) {
	ev.Date = weekly.DateString(weekly.CivilDate(ev.At, t.loc))
	added, err := t.store.AddVisitStamp(ev.Viewer, ev.Date)
	if err != nil {
		return "", fmt.Errorf("stamp %s: %w", ev.Viewer, err)
	}
	if !added {
		ev.Outcome = AlreadyStamped
		return "", nil
	}
	ev.Outcome = Stamped
	return "visit stamp " + ev.Date, nil
}

func (t *Tracker) notify(viewer, message string) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(viewer, message); err != nil {
		t.log.Warn("notification failed", zap.Error(err))
	}
}
