package store

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func slicePtr(s []string) *[]string { return &s }

func sampleReminder() Reminder {
	return Reminder{
		MedicationName:   "Sertraline",
		Dosage:           "50mg",
		Times:            []string{"09:00", "21:00"},
		Frequency:        FrequencyDaily,
		SoundEnabled:     true,
		VibrationEnabled: true,
		Enabled:          true,
	}
}

func TestCreate(t *testing.T) {
	db := testDB(t)

	r, err := db.Create(sampleReminder())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" {
		t.Error("expected non-empty ID")
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	reminders := db.Load()
	if len(reminders) != 1 {
		t.Fatalf("Load returned %d reminders, want 1", len(reminders))
	}
	if reminders[0].ID != r.ID {
		t.Errorf("ID = %q, want %q", reminders[0].ID, r.ID)
	}
	if reminders[0].MedicationName != "Sertraline" {
		t.Errorf("MedicationName = %q, want Sertraline", reminders[0].MedicationName)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testDB(t)

	cases := []struct {
		name   string
		mutate func(*Reminder)
	}{
		{"empty name", func(r *Reminder) { r.MedicationName = "  " }},
		{"empty dosage", func(r *Reminder) { r.Dosage = "" }},
		{"no times", func(r *Reminder) { r.Times = nil }},
		{"bad time", func(r *Reminder) { r.Times = []string{"25:00"} }},
		{"bad time format", func(r *Reminder) { r.Times = []string{"09:00:30"} }},
		{"unknown frequency", func(r *Reminder) { r.Frequency = "hourly" }},
		{"weekly without days", func(r *Reminder) { r.Frequency = FrequencyWeekly; r.Days = nil }},
		{"weekly with bad day", func(r *Reminder) { r.Frequency = FrequencyWeekly; r.Days = []string{"Caturday"} }},
	}

	for _, tc := range cases {
		r := sampleReminder()
		tc.mutate(&r)
		_, err := db.Create(r)
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: error %v is not a ValidationError", tc.name, err)
		}
	}

	if got := db.Load(); len(got) != 0 {
		t.Errorf("rejected creates persisted %d reminders", len(got))
	}
}

func TestCreateNormalizesTimesAndDays(t *testing.T) {
	db := testDB(t)

	r := sampleReminder()
	r.Times = []string{"21:00", "9:00", "09:00"}
	r.Frequency = FrequencyWeekly
	r.Days = []string{"monday", "THURSDAY", "Monday"}

	created, err := db.Create(r)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(created.Times) != 2 || created.Times[0] != "09:00" || created.Times[1] != "21:00" {
		t.Errorf("Times = %v, want [09:00 21:00]", created.Times)
	}
	if len(created.Days) != 2 || created.Days[0] != "Monday" || created.Days[1] != "Thursday" {
		t.Errorf("Days = %v, want [Monday Thursday]", created.Days)
	}
}

func TestLoadPreservesInsertionOrder(t *testing.T) {
	db := testDB(t)

	names := []string{"Alpha", "Bravo", "Charlie"}
	for _, n := range names {
		r := sampleReminder()
		r.MedicationName = n
		if _, err := db.Create(r); err != nil {
			t.Fatalf("Create %s: %v", n, err)
		}
	}

	got := db.Load()
	if len(got) != 3 {
		t.Fatalf("Load returned %d reminders, want 3", len(got))
	}
	for i, n := range names {
		if got[i].MedicationName != n {
			t.Errorf("reminders[%d] = %q, want %q", i, got[i].MedicationName, n)
		}
	}
}

func TestUpdate(t *testing.T) {
	db := testDB(t)

	created, err := db.Create(sampleReminder())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := db.Update(created.ID, UpdateFields{
		Dosage:       strPtr("100mg"),
		Notes:        strPtr("with food"),
		SoundEnabled: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Dosage != "100mg" {
		t.Errorf("Dosage = %q, want 100mg", updated.Dosage)
	}
	if updated.SoundEnabled {
		t.Error("SoundEnabled still true after update")
	}
	if updated.Notes != "with food" {
		t.Errorf("Notes = %q, want 'with food'", updated.Notes)
	}
	if updated.MedicationName != created.MedicationName {
		t.Errorf("MedicationName changed to %q", updated.MedicationName)
	}
	if updated.ID != created.ID {
		t.Error("ID changed on update")
	}
}

func TestUpdateRejectsWeeklyWithoutDays(t *testing.T) {
	db := testDB(t)

	created, err := db.Create(sampleReminder())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = db.Update(created.ID, UpdateFields{Frequency: strPtr(FrequencyWeekly)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Prior state is kept.
	got, err := db.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Frequency != FrequencyDaily {
		t.Errorf("Frequency = %q, want daily after rejected update", got.Frequency)
	}

	// Switching frequency and days together is fine.
	updated, err := db.Update(created.ID, UpdateFields{
		Frequency: strPtr(FrequencyWeekly),
		Days:      slicePtr([]string{"Monday"}),
	})
	if err != nil {
		t.Fatalf("Update to weekly with days: %v", err)
	}
	if updated.Frequency != FrequencyWeekly {
		t.Errorf("Frequency = %q, want weekly", updated.Frequency)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	db := testDB(t)

	_, err := db.Update("nope", UpdateFields{Notes: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkTakenOnlySetsLastTaken(t *testing.T) {
	db := testDB(t)

	r := sampleReminder()
	r.Frequency = FrequencyWeekly
	r.Days = []string{"Monday", "Thursday"}
	created, err := db.Create(r)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	taken, err := db.MarkTaken(created.ID, at)
	if err != nil {
		t.Fatalf("MarkTaken: %v", err)
	}

	if taken.LastTaken == nil || !taken.LastTaken.Equal(at) {
		t.Errorf("LastTaken = %v, want %v", taken.LastTaken, at)
	}
	if !taken.Enabled {
		t.Error("acknowledgment disabled the reminder")
	}
	if taken.Frequency != FrequencyWeekly {
		t.Errorf("Frequency = %q, want weekly", taken.Frequency)
	}
	if len(taken.Times) != len(created.Times) {
		t.Errorf("Times changed: %v", taken.Times)
	}
	if len(taken.Days) != 2 {
		t.Errorf("Days changed: %v", taken.Days)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)

	created, err := db.Create(sampleReminder())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := db.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := db.Load(); len(got) != 0 {
		t.Errorf("Load returned %d reminders after delete, want 0", len(got))
	}
	if _, err := db.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := db.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	db := testDB(t)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	r := sampleReminder()
	r.ID = "fixed-id"
	r.Frequency = FrequencyWeekly
	r.Days = []string{"Friday"}
	r.LastTaken = &at
	r.SoundEnabled = false
	r.CreatedAt = at
	r.UpdatedAt = at

	if err := db.Save([]Reminder{r}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := db.Load()
	if len(got) != 1 {
		t.Fatalf("Load returned %d reminders, want 1", len(got))
	}
	if got[0].ID != "fixed-id" {
		t.Errorf("ID = %q", got[0].ID)
	}
	if got[0].SoundEnabled {
		t.Error("SoundEnabled should be false")
	}
	if got[0].LastTaken == nil || !got[0].LastTaken.Equal(at) {
		t.Errorf("LastTaken = %v, want %v", got[0].LastTaken, at)
	}
	if len(got[0].Days) != 1 || got[0].Days[0] != "Friday" {
		t.Errorf("Days = %v, want [Friday]", got[0].Days)
	}
}

func TestLoadNeverFails(t *testing.T) {
	db := testDB(t)

	// Simulate a corrupt payload: break the times JSON for one row and
	// drop the table entirely for the second load.
	if _, err := db.Create(sampleReminder()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := db.Exec("UPDATE reminders SET times = 'not json'"); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	if got := db.Load(); len(got) != 0 {
		t.Errorf("Load with corrupt row returned %d reminders, want 0", len(got))
	}

	if _, err := db.Exec("DROP TABLE reminders"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if got := db.Load(); got == nil || len(got) != 0 {
		t.Errorf("Load without table = %v, want empty list", got)
	}
}

func TestNormalizeTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"09:00", "09:00", true},
		{"9:00", "09:00", true},
		{"23:59", "23:59", true},
		{"0:05", "00:05", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"noon", "", false},
		{"12", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeTimeOfDay(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("NormalizeTimeOfDay(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("NormalizeTimeOfDay(%q): expected error", tc.in)
		}
	}
}
