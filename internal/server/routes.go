package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/medtick/internal/store"
)

// createRequest mirrors store.Reminder with optional toggles so absent
// fields keep the defaults a new reminder should have: sound and
// vibration on, enabled, daily.
type createRequest struct {
	MedicationName   string   `json:"medication_name"`
	Dosage           string   `json:"dosage"`
	Times            []string `json:"times"`
	Frequency        string   `json:"frequency"`
	Days             []string `json:"days"`
	Notes            string   `json:"notes"`
	SoundEnabled     *bool    `json:"sound_enabled"`
	VibrationEnabled *bool    `json:"vibration_enabled"`
	Enabled          *bool    `json:"enabled"`
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"reminders": s.db.Load(),
	})
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	reminder := store.Reminder{
		MedicationName:   req.MedicationName,
		Dosage:           req.Dosage,
		Times:            req.Times,
		Frequency:        req.Frequency,
		Days:             req.Days,
		Notes:            req.Notes,
		SoundEnabled:     true,
		VibrationEnabled: true,
		Enabled:          true,
	}
	if reminder.Frequency == "" {
		reminder.Frequency = store.FrequencyDaily
	}
	if req.SoundEnabled != nil {
		reminder.SoundEnabled = *req.SoundEnabled
	}
	if req.VibrationEnabled != nil {
		reminder.VibrationEnabled = *req.VibrationEnabled
	}
	if req.Enabled != nil {
		reminder.Enabled = *req.Enabled
	}

	created, err := s.db.Create(reminder)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	reminder, err := s.db.Get(chi.URLParam(r, "reminderID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var fields store.UpdateFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	updated, err := s.db.Update(chi.URLParam(r, "reminderID"), fields)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reminderID")
	if err := s.db.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	// Stale banners for a deleted reminder have no acknowledgment
	// target anymore; clear them.
	s.feed.Acknowledge(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMarkTaken is the acknowledgment surface: the only write path
// from the UI back into LastTaken.
func (s *Server) handleMarkTaken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reminderID")
	reminder, err := s.db.MarkTaken(id, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.feed.Acknowledge(id)
	writeJSON(w, http.StatusOK, reminder)
}

// handleFireReminder triggers a notification on user demand. This is
// how as-needed reminders get delivered, since the clock never matches
// them.
func (s *Server) handleFireReminder(w http.ResponseWriter, r *http.Request) {
	reminder, err := s.db.Get(chi.URLParam(r, "reminderID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	outcomes := s.dispatcher.Dispatch(r.Context(), *reminder)
	writeJSON(w, http.StatusOK, map[string]any{
		"reminder_id": reminder.ID,
		"outcomes":    outcomes,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	unackedOnly := r.URL.Query().Get("unacked") == "1"
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.feed.List(unackedOnly),
	})
}

// writeStoreError maps store errors onto HTTP statuses: rejected
// validation is the caller's problem, a missing ID is 404, anything
// else is a persistence failure the user must see.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "reminder not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
