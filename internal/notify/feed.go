package notify

import (
	"sync"
	"time"

	"github.com/lazypower/medtick/internal/store"
)

// DefaultFeedSize bounds the in-app feed; older banners fall off.
const DefaultFeedSize = 50

// Notification is one in-app banner: a fired occurrence awaiting (or
// past) acknowledgment.
type Notification struct {
	ID             int64     `json:"id"`
	ReminderID     string    `json:"reminder_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	FiredAt        time.Time `json:"fired_at"`
	Acknowledged   bool      `json:"acknowledged"`
}

// Feed is the in-app visual channel: a bounded, in-memory list of
// fired notifications the UI polls and acknowledges. Push never fails.
type Feed struct {
	mu    sync.Mutex
	next  int64
	max   int
	items []Notification
}

// NewFeed creates a feed holding at most max entries. max <= 0 uses
// DefaultFeedSize.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = DefaultFeedSize
	}
	return &Feed{max: max}
}

// Push records a fired reminder and returns the banner entry.
func (f *Feed) Push(r store.Reminder, at time.Time) Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	n := Notification{
		ID:             f.next,
		ReminderID:     r.ID,
		MedicationName: r.MedicationName,
		Dosage:         r.Dosage,
		FiredAt:        at,
	}
	f.items = append(f.items, n)
	if len(f.items) > f.max {
		f.items = f.items[len(f.items)-f.max:]
	}
	return n
}

// List returns entries newest first. With unackedOnly, acknowledged
// banners are filtered out.
func (f *Feed) List(unackedOnly bool) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		if unackedOnly && f.items[i].Acknowledged {
			continue
		}
		out = append(out, f.items[i])
	}
	return out
}

// Acknowledge marks every entry for the given reminder as acknowledged
// and returns how many were affected.
func (f *Feed) Acknowledge(reminderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for i := range f.items {
		if f.items[i].ReminderID == reminderID && !f.items[i].Acknowledged {
			f.items[i].Acknowledged = true
			count++
		}
	}
	return count
}
