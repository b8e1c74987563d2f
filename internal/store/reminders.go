package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frequency values for reminders.
const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyAsNeeded = "as-needed"
)

// DaysOfWeek lists the canonical weekday labels, Monday first.
// These match time.Weekday.String(), so due evaluation can compare
// labels directly without a mapping table.
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ErrNotFound is returned when a reminder ID does not exist.
var ErrNotFound = errors.New("reminder not found")

// ValidationError marks a rejected create/update so callers can keep
// the edit open rather than treating it as a persistence failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Reminder is the sole persisted entity: one medication schedule.
type Reminder struct {
	ID               string     `json:"id"`
	MedicationName   string     `json:"medication_name"`
	Dosage           string     `json:"dosage"`
	Times            []string   `json:"times"`     // "HH:MM", 24-hour, minute resolution
	Frequency        string     `json:"frequency"` // daily, weekly, as-needed
	Days             []string   `json:"days,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	SoundEnabled     bool       `json:"sound_enabled"`
	VibrationEnabled bool       `json:"vibration_enabled"`
	LastTaken        *time.Time `json:"last_taken,omitempty"` // advisory only
	Enabled          bool       `json:"enabled"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UpdateFields holds optional fields for a partial update.
// Nil pointers leave the existing value untouched.
type UpdateFields struct {
	MedicationName   *string   `json:"medication_name"`
	Dosage           *string   `json:"dosage"`
	Times            *[]string `json:"times"`
	Frequency        *string   `json:"frequency"`
	Days             *[]string `json:"days"`
	Notes            *string   `json:"notes"`
	SoundEnabled     *bool     `json:"sound_enabled"`
	VibrationEnabled *bool     `json:"vibration_enabled"`
	Enabled          *bool     `json:"enabled"`
}

// NormalizeTimeOfDay canonicalizes a wall-clock time to zero-padded
// "HH:MM". Accepts "8:00" and "08:00"; rejects seconds and out-of-range
// values.
func NormalizeTimeOfDay(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return "", invalid("time %q must be HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", invalid("time %q has invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", invalid("time %q has invalid minute", s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// NormalizeDay canonicalizes a weekday label ("monday" -> "Monday").
func NormalizeDay(s string) (string, error) {
	for _, d := range DaysOfWeek {
		if strings.EqualFold(strings.TrimSpace(s), d) {
			return d, nil
		}
	}
	return "", invalid("unknown weekday %q", s)
}

// normalize canonicalizes times and days in place: zero-padded, deduped,
// sorted times; canonical-case, deduped days.
func (r *Reminder) normalize() error {
	seen := make(map[string]bool, len(r.Times))
	times := make([]string, 0, len(r.Times))
	for _, t := range r.Times {
		norm, err := NormalizeTimeOfDay(t)
		if err != nil {
			return err
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		times = append(times, norm)
	}
	sort.Strings(times)
	r.Times = times

	seenDays := make(map[string]bool, len(r.Days))
	days := make([]string, 0, len(r.Days))
	for _, d := range r.Days {
		norm, err := NormalizeDay(d)
		if err != nil {
			return err
		}
		if seenDays[norm] {
			continue
		}
		seenDays[norm] = true
		days = append(days, norm)
	}
	r.Days = days
	return nil
}

// Validate checks the reminder invariants. The reminder must already be
// normalized.
func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.MedicationName) == "" {
		return invalid("medication name is required")
	}
	if strings.TrimSpace(r.Dosage) == "" {
		return invalid("dosage is required")
	}
	if len(r.Times) == 0 {
		return invalid("at least one time is required")
	}
	switch r.Frequency {
	case FrequencyDaily, FrequencyAsNeeded:
		// days are not consulted
	case FrequencyWeekly:
		if len(r.Days) == 0 {
			return invalid("weekly reminders need at least one day")
		}
	default:
		return invalid("unknown frequency %q", r.Frequency)
	}
	return nil
}

// Load returns the full persisted reminder list in insertion order.
// It never fails the caller: any storage error degrades to an empty
// list so the rest of the application still renders. Save errors are
// where persistence problems get surfaced.
func (db *DB) Load() []Reminder {
	rows, err := db.Query(`
		SELECT id, medication_name, dosage, times, frequency, days, notes,
		       sound_enabled, vibration_enabled, last_taken, enabled,
		       created_at, updated_at
		FROM reminders ORDER BY position ASC
	`)
	if err != nil {
		log.Printf("[store] load reminders: %v", err)
		return []Reminder{}
	}
	defer rows.Close()

	reminders := []Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			// One bad row should not take the whole list down.
			log.Printf("[store] skipping unreadable reminder row: %v", err)
			continue
		}
		reminders = append(reminders, *r)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[store] load reminders: %v", err)
		return []Reminder{}
	}
	return reminders
}

// Save persists the complete reminder list as the new durable state.
// The whole list is rewritten in one transaction; there are no
// row-level partial writes at the storage boundary.
func (db *DB) Save(reminders []Reminder) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM reminders"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear reminders: %w", err)
	}

	for i, r := range reminders {
		times, err := json.Marshal(r.Times)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode times for %s: %w", r.ID, err)
		}
		days, err := json.Marshal(r.Days)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode days for %s: %w", r.ID, err)
		}

		var lastTaken any
		if r.LastTaken != nil {
			lastTaken = r.LastTaken.UnixMilli()
		}

		if _, err := tx.Exec(`
			INSERT INTO reminders (id, position, medication_name, dosage, times,
				frequency, days, notes, sound_enabled, vibration_enabled,
				last_taken, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, i, r.MedicationName, r.Dosage, string(times),
			r.Frequency, string(days), r.Notes,
			boolToInt(r.SoundEnabled), boolToInt(r.VibrationEnabled),
			lastTaken, boolToInt(r.Enabled),
			r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert reminder %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Create validates and persists a new reminder, assigning its ID and
// timestamps. Exactly one Save.
func (db *DB) Create(r Reminder) (*Reminder, error) {
	if err := r.normalize(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	r.ID = uuid.NewString()
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	reminders := db.Load()
	reminders = append(reminders, r)
	if err := db.Save(reminders); err != nil {
		return nil, err
	}
	return &r, nil
}

// Get returns a single reminder by ID, or ErrNotFound.
func (db *DB) Get(id string) (*Reminder, error) {
	for _, r := range db.Load() {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

// Update applies a partial update, re-validating the result so a
// transition cannot violate the schema invariants (e.g. switching to
// weekly with empty days). Exactly one Save.
func (db *DB) Update(id string, fields UpdateFields) (*Reminder, error) {
	reminders := db.Load()
	idx := -1
	for i := range reminders {
		if reminders[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}

	r := reminders[idx]
	if fields.MedicationName != nil {
		r.MedicationName = *fields.MedicationName
	}
	if fields.Dosage != nil {
		r.Dosage = *fields.Dosage
	}
	if fields.Times != nil {
		r.Times = *fields.Times
	}
	if fields.Frequency != nil {
		r.Frequency = *fields.Frequency
	}
	if fields.Days != nil {
		r.Days = *fields.Days
	}
	if fields.Notes != nil {
		r.Notes = *fields.Notes
	}
	if fields.SoundEnabled != nil {
		r.SoundEnabled = *fields.SoundEnabled
	}
	if fields.VibrationEnabled != nil {
		r.VibrationEnabled = *fields.VibrationEnabled
	}
	if fields.Enabled != nil {
		r.Enabled = *fields.Enabled
	}

	if err := r.normalize(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.UpdatedAt = time.Now()

	reminders[idx] = r
	if err := db.Save(reminders); err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkTaken records a user acknowledgment. It only ever sets LastTaken;
// enablement and schedule are untouched. Exactly one Save.
func (db *DB) MarkTaken(id string, at time.Time) (*Reminder, error) {
	reminders := db.Load()
	for i := range reminders {
		if reminders[i].ID != id {
			continue
		}
		t := at
		reminders[i].LastTaken = &t
		reminders[i].UpdatedAt = at
		if err := db.Save(reminders); err != nil {
			return nil, err
		}
		r := reminders[i]
		return &r, nil
	}
	return nil, ErrNotFound
}

// Delete removes a reminder permanently; it will never evaluate as due
// again. Exactly one Save.
func (db *DB) Delete(id string) error {
	reminders := db.Load()
	kept := reminders[:0]
	found := false
	for _, r := range reminders {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrNotFound
	}
	return db.Save(kept)
}

func scanReminder(rows *sql.Rows) (*Reminder, error) {
	var r Reminder
	var times, days string
	var soundEnabled, vibrationEnabled, enabled int
	var lastTaken sql.NullInt64
	var createdAt, updatedAt int64

	if err := rows.Scan(&r.ID, &r.MedicationName, &r.Dosage, &times,
		&r.Frequency, &days, &r.Notes,
		&soundEnabled, &vibrationEnabled, &lastTaken, &enabled,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(times), &r.Times); err != nil {
		return nil, fmt.Errorf("decode times for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(days), &r.Days); err != nil {
		return nil, fmt.Errorf("decode days for %s: %w", r.ID, err)
	}

	r.SoundEnabled = soundEnabled != 0
	r.VibrationEnabled = vibrationEnabled != 0
	r.Enabled = enabled != 0
	if lastTaken.Valid {
		t := time.UnixMilli(lastTaken.Int64)
		r.LastTaken = &t
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	r.UpdatedAt = time.UnixMilli(updatedAt)
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
