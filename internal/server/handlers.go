package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sadopc/studyboard/internal/chat"
	"github.com/sadopc/studyboard/internal/store"
	"github.com/sadopc/studyboard/internal/weekly"
)

type chatResponse struct {
	Messages              []chat.Message `json:"messages"`
	NextPageToken         string         `json:"nextPageToken,omitempty"`
	PollingIntervalMillis int64          `json:"pollingIntervalMillis"`
}

func (s *Server) handleYouTube(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		writeError(w, http.StatusNotFound, "No live chat found")
		return
	}

	page, err := s.fetcher.Fetch(r.Context(), r.URL.Query().Get("pageToken"))
	if errors.Is(err, chat.ErrNoLiveChat) {
		writeError(w, http.StatusNotFound, "No live chat found")
		return
	}
	if err != nil {
		s.log.Error("fetch live chat", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch live chat")
		return
	}

	messages := page.Messages
	if messages == nil {
		messages = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Messages:              messages,
		NextPageToken:         page.NextPageToken,
		PollingIntervalMillis: page.PollingInterval.Milliseconds(),
	})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	date := s.today()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := weekly.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	profiles, ok := s.listProfiles(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, weekly.Aggregate(profiles, date))
}

type stampsResponse struct {
	WeekStart string  `json:"weekStart"`
	Stamps    [7]bool `json:"stamps"`
}

func (s *Server) handleVisitStamps(w http.ResponseWriter, r *http.Request) {
	start := weekly.WeekStart(s.today())
	if q := r.URL.Query().Get("weekStart"); q != "" {
		d, err := weekly.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekStart must be YYYY-MM-DD")
			return
		}
		start = d
	}

	profiles, ok := s.listProfiles(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stampsResponse{
		WeekStart: weekly.DateString(start),
		Stamps:    weekly.VisitStamps(profiles, start),
	})
}

type leaderboardResponse struct {
	UpdatedAt string            `json:"updatedAt"`
	Users     []weekly.Standing `json:"users"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	profiles, ok := s.listProfiles(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		UpdatedAt: weekly.FormatUpdated(s.now().In(s.loc)),
		Users:     weekly.Rank(profiles),
	})
}

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

type sessionResponse struct {
	ID              string     `json:"id"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationSeconds int64      `json:"durationSeconds"`
}

type viewerResponse struct {
	Name            string            `json:"name"`
	ProfileImageURL string            `json:"profileImageUrl"`
	FirstSeen       time.Time         `json:"firstSeen"`
	LastSeen        time.Time         `json:"lastSeen"`
	VisitStamps     []string          `json:"visitStamps"`
	Sessions        []sessionResponse `json:"sessions"`
}

// handleViewer returns one viewer's stamps and newest sessions. from and to
// are inclusive local dates bounding the session start.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	filter := store.SessionFilter{Viewer: &name, Limit: defaultSessionLimit}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		filter.Limit = min(n, maxSessionLimit)
	}
	if v := q.Get("from"); v != "" {
		d, err := weekly.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from := s.localMidnight(d)
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		d, err := weekly.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to := s.localMidnight(d.AddDate(0, 0, 1))
		filter.To = &to
	}

	viewer, err := s.viewers.GetViewer(name)
	if errors.Is(err, store.ErrViewerNotFound) {
		writeError(w, http.StatusNotFound, "Viewer not found")
		return
	}
	if err != nil {
		s.log.Error("get viewer", zap.String("viewer", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load viewer")
		return
	}

	stamps, err := s.viewers.ListVisitStamps(name)
	if err != nil {
		s.log.Error("list visit stamps", zap.String("viewer", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load viewer")
		return
	}
	sessions, err := s.viewers.ListSessions(filter)
	if err != nil {
		s.log.Error("list sessions", zap.String("viewer", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load viewer")
		return
	}

	resp := viewerResponse{
		Name:            viewer.Name,
		ProfileImageURL: viewer.ProfileImageURL,
		FirstSeen:       viewer.FirstSeen,
		LastSeen:        viewer.LastSeen,
		VisitStamps:     stamps,
		Sessions:        make([]sessionResponse, 0, len(sessions)),
	}
	if resp.VisitStamps == nil {
		resp.VisitStamps = []string{}
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionResponse{
			ID:              sess.ID,
			StartTime:       sess.StartTime,
			EndTime:         sess.EndTime,
			DurationSeconds: sess.Duration,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// localMidnight turns a calendar date into the instant it begins in s.loc.
func (s *Server) localMidnight(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if s.chat != nil {
		body["chat"] = s.chat.Status().String()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listProfiles(w http.ResponseWriter) ([]weekly.Profile, bool) {
	profiles, err := s.profiles.ListProfiles()
	if err != nil {
		s.log.Error("list profiles", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load profiles")
		return nil, false
	}
	return profiles, true
}
