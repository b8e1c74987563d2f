package notify

import (
	"testing"
	"time"

	"github.com/lazypower/medtick/internal/store"
)

func TestFeedPushAndList(t *testing.T) {
	feed := NewFeed(10)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	r := store.Reminder{ID: "r-1", MedicationName: "Metformin", Dosage: "500mg"}
	n := feed.Push(r, at)
	if n.ID == 0 {
		t.Error("expected non-zero notification ID")
	}

	feed.Push(store.Reminder{ID: "r-2", MedicationName: "Lisinopril", Dosage: "10mg"}, at.Add(time.Minute))

	got := feed.List(false)
	if len(got) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].ReminderID != "r-2" || got[1].ReminderID != "r-1" {
		t.Errorf("order = [%s %s], want [r-2 r-1]", got[0].ReminderID, got[1].ReminderID)
	}
}

func TestFeedAcknowledge(t *testing.T) {
	feed := NewFeed(10)
	at := time.Now()

	r := store.Reminder{ID: "r-1", MedicationName: "Metformin", Dosage: "500mg"}
	feed.Push(r, at)
	feed.Push(r, at.Add(12*time.Hour)) // second occurrence, same reminder
	feed.Push(store.Reminder{ID: "r-2", MedicationName: "Other", Dosage: "1"}, at)

	if n := feed.Acknowledge("r-1"); n != 2 {
		t.Errorf("Acknowledge = %d, want 2", n)
	}

	unacked := feed.List(true)
	if len(unacked) != 1 || unacked[0].ReminderID != "r-2" {
		t.Errorf("unacked = %+v, want only r-2", unacked)
	}
	if n := feed.Acknowledge("r-1"); n != 0 {
		t.Errorf("second Acknowledge = %d, want 0", n)
	}
}

func TestFeedBounded(t *testing.T) {
	feed := NewFeed(3)
	at := time.Now()

	for i := 0; i < 5; i++ {
		feed.Push(store.Reminder{ID: "r-1", MedicationName: "M", Dosage: "1"}, at)
	}

	got := feed.List(false)
	if len(got) != 3 {
		t.Errorf("List returned %d entries, want 3 (bounded)", len(got))
	}
	// Oldest entries fall off; newest survive.
	if got[0].ID != 5 || got[2].ID != 3 {
		t.Errorf("IDs = [%d %d %d], want [5 4 3]", got[0].ID, got[1].ID, got[2].ID)
	}
}
