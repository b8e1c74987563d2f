package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/medtick/internal/notify"
	"github.com/lazypower/medtick/internal/store"
)

// Server is the medtick HTTP API: the reminder CRUD surface, the
// in-app notification feed, and the acknowledgment path.
type Server struct {
	db         *store.DB
	feed       *notify.Feed
	dispatcher *notify.Dispatcher
	router     chi.Router
	version    string
	started    time.Time
}

// New creates a new Server with the given store, feed, and dispatcher.
func New(db *store.DB, feed *notify.Feed, dispatcher *notify.Dispatcher, version string) *Server {
	s := &Server{
		db:         db,
		feed:       feed,
		dispatcher: dispatcher,
		version:    version,
		started:    time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/reminders", s.handleListReminders)
		r.Post("/reminders", s.handleCreateReminder)
		r.Get("/reminders/{reminderID}", s.handleGetReminder)
		r.Patch("/reminders/{reminderID}", s.handleUpdateReminder)
		r.Delete("/reminders/{reminderID}", s.handleDeleteReminder)
		r.Post("/reminders/{reminderID}/taken", s.handleMarkTaken)
		r.Post("/reminders/{reminderID}/fire", s.handleFireReminder)

		r.Get("/notifications", s.handleNotifications)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
