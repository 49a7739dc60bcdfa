package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"axis/internal/config"
	"axis/internal/feed"
	"axis/internal/ics"
	appLog "axis/internal/log"
	"axis/internal/model"
	"axis/internal/store"
)

// Server provides the HTTP API around the importer: uploads, scheduled
// refresh, and read access to the persisted timetable.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *feed.Fetcher
	loc     *time.Location
	mux     *http.ServeMux

	// now is stubbed in tests.
	now func() time.Time
}

// NewServer constructs a Server. fetcher may be nil when no feed is
// subscribed; only /api/refresh depends on it.
func NewServer(cfg *config.Config, st *store.Store, fetcher *feed.Fetcher) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		fetcher: fetcher,
		loc:     cfg.Location(),
		mux:     http.NewServeMux(),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// applied when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="axisd", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/import", s.handleImport)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/api/timetable", s.handleTimetable)
	s.mux.HandleFunc("/api/timetable/today", s.handleToday)
	s.mux.HandleFunc("/api/exams", s.handleExams)
	s.mux.HandleFunc("/api/export.ics", s.handleExport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleImport imports a feed uploaded as the raw request body, replaces
// the stored snapshot with the result, and returns it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	maxBytes := s.cfg.MaxInputBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(maxBytes)+1))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "feed too large")
		return
	}

	snap, err := s.importAndStore("upload", string(body))
	if err != nil {
		appLog.Error("import: failed to persist snapshot", err)
		writeError(w, http.StatusInternalServerError, "failed to persist timetable")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleRefresh fetches the subscribed feed and re-imports it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	snap, err := s.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, errNoFeed) {
			writeError(w, http.StatusConflict, "no feed configured")
			return
		}
		appLog.Error("refresh failed", err)
		writeError(w, http.StatusBadGateway, "feed refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

var errNoFeed = errors.New("no feed configured")

// Refresh fetches the configured feed, imports it and replaces the stored
// snapshot. Shared by /api/refresh, the cron schedule, and -once mode.
func (s *Server) Refresh(ctx context.Context) (*store.Snapshot, error) {
	if s.cfg.Feed == nil || s.cfg.Feed.URL == "" || s.fetcher == nil {
		return nil, errNoFeed
	}

	src := feed.Source{ID: s.cfg.Feed.ID, URL: s.cfg.Feed.URL}
	if src.ID == "" {
		if s.cfg.Feed.Name != "" {
			src.ID = s.cfg.Feed.Name
		} else {
			src.ID = src.URL
		}
	}

	res, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	return s.importAndStore(src.ID, string(res.Body))
}

func (s *Server) importAndStore(feedID, text string) (*store.Snapshot, error) {
	result := ics.ImportFeed(text, ics.Options{
		DisplayLocation: s.loc,
		MaxInputBytes:   s.cfg.MaxInputBytes,
	})

	snap := &store.Snapshot{
		FeedID:     feedID,
		ImportedAt: s.now().UTC(),
		Result:     result,
	}
	if err := s.store.Save(snap); err != nil {
		return nil, err
	}

	appLog.Info("timetable replaced",
		"feed_id", feedID,
		"subjects", len(result.Subjects),
		"exams", len(result.Exams),
	)
	return snap, nil
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// todayResponse is the JSON shape for /api/timetable/today.
type todayResponse struct {
	Day     string             `json:"day"`
	Date    string             `json:"date"`
	Classes []model.ClassEntry `json:"classes"`
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	now := s.now().In(s.loc)
	day := model.DayCode(now.Weekday())
	classes := snap.Result.ClassesOn(day)
	if classes == nil {
		classes = []model.ClassEntry{}
	}

	writeJSON(w, http.StatusOK, todayResponse{
		Day:     day,
		Date:    now.Format("2006-01-02"),
		Classes: classes,
	})
}

// examEntry is one exam with its distance from today.
type examEntry struct {
	model.Exam
	DaysUntil int `json:"daysUntil"`
}

// handleExams lists upcoming exams (today or later) with days-until,
// preserving the chronological order of the import.
func (s *Server) handleExams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	now := s.now().In(s.loc)
	out := make([]examEntry, 0, len(snap.Result.Exams))
	for _, ex := range snap.Result.Exams {
		d, ok := ex.DaysUntil(now)
		if !ok || d < 0 {
			continue
		}
		out = append(out, examEntry{Exam: ex, DaysUntil: d})
	}

	writeJSON(w, http.StatusOK, out)
}

// handleExport serves the stored timetable as an iCalendar file anchored
// to the upcoming Monday.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	body := ics.ExportICS(snap.Result, nextMonday(s.now().In(s.loc)))
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// loadSnapshot fetches the stored snapshot, writing the error response
// itself when there is nothing to serve.
func (s *Server) loadSnapshot(w http.ResponseWriter) (*store.Snapshot, bool) {
	snap, err := s.store.Load()
	if err != nil {
		appLog.Error("snapshot load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load timetable")
		return nil, false
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no timetable imported yet")
		return nil, false
	}
	return snap, true
}

// nextMonday returns the Monday of the week containing now, or the coming
// Monday when now is a weekend day.
func nextMonday(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d.AddDate(0, 0, -int(d.Weekday()-time.Monday))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
