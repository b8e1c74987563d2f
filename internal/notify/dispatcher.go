// Package notify fans a due reminder out to independent delivery
// channels: the in-app feed, a platform push channel, an audio cue, and
// a haptic cue. Channels fail independently; the in-app feed is always
// attempted so the acknowledgment path is always offered.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lazypower/medtick/internal/store"
)

// Channel names used in outcomes and logs.
const (
	ChannelInApp    = "in-app"
	ChannelPlatform = "platform"
	ChannelAudio    = "audio"
	ChannelHaptic   = "haptic"
)

// Permission is the tri-state of the platform push capability.
type Permission int

const (
	PermissionDefault Permission = iota // not yet requested
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Pusher is the platform notification capability.
type Pusher interface {
	// Permission reports the current capability state without side effects.
	Permission() Permission
	// RequestPermission resolves a default state to granted or denied.
	// The dispatcher calls it at most once per process.
	RequestPermission(ctx context.Context) Permission
	// Push delivers one platform notification.
	Push(ctx context.Context, r store.Reminder) error
}

// SoundPlayer plays the audio cue once per firing.
type SoundPlayer interface {
	Play(ctx context.Context) error
}

// Haptics triggers a vibration pattern, fire-and-forget.
type Haptics interface {
	Vibrate(ctx context.Context) error
}

// Outcome is the per-channel result of one firing. Outcomes are never
// aggregated into a single pass/fail for the event.
type Outcome struct {
	Channel   string `json:"channel"`
	Attempted bool   `json:"attempted"`
	Error     string `json:"error,omitempty"`
}

// Dispatcher delivers due reminders through each enabled channel.
type Dispatcher struct {
	feed     *Feed
	platform Pusher
	sound    SoundPlayer
	haptics  Haptics
	now      func() time.Time

	mu        sync.Mutex
	requested bool
}

// NewDispatcher creates a dispatcher with only the in-app feed wired.
func NewDispatcher(feed *Feed) *Dispatcher {
	return &Dispatcher{feed: feed, now: time.Now}
}

// SetPlatform wires the platform push capability.
func (d *Dispatcher) SetPlatform(p Pusher) { d.platform = p }

// SetSound wires the audio capability.
func (d *Dispatcher) SetSound(s SoundPlayer) { d.sound = s }

// SetHaptics wires the haptic capability.
func (d *Dispatcher) SetHaptics(h Haptics) { d.haptics = h }

// Fire delivers one due reminder and logs each channel's outcome.
// It satisfies schedule.Notifier.
func (d *Dispatcher) Fire(ctx context.Context, r store.Reminder) {
	for _, o := range d.Dispatch(ctx, r) {
		if o.Error != "" {
			log.Printf("[notify] %s: %s channel failed: %s", r.MedicationName, o.Channel, o.Error)
		} else if o.Attempted {
			log.Printf("[notify] %s: delivered via %s", r.MedicationName, o.Channel)
		}
	}
}

// Dispatch fans the reminder out to every enabled channel and returns
// the per-channel outcomes. A failing channel never blocks the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, r store.Reminder) []Outcome {
	outcomes := make([]Outcome, 0, 4)

	// In-app feed first; it carries the acknowledgment action.
	inApp := Outcome{Channel: ChannelInApp, Attempted: true}
	if err := attempt(func() error {
		d.feed.Push(r, d.now())
		return nil
	}); err != nil {
		inApp.Error = err.Error()
	}
	outcomes = append(outcomes, inApp)

	platform := Outcome{Channel: ChannelPlatform}
	if d.platform != nil {
		perm := d.platform.Permission()
		if perm == PermissionDefault && d.requestOnce() {
			perm = d.platform.RequestPermission(ctx)
			log.Printf("[notify] platform permission resolved: %s", perm)
		}
		if perm == PermissionGranted {
			platform.Attempted = true
			if err := attempt(func() error { return d.platform.Push(ctx, r) }); err != nil {
				platform.Error = err.Error()
			}
		}
	}
	outcomes = append(outcomes, platform)

	audio := Outcome{Channel: ChannelAudio}
	if r.SoundEnabled && d.sound != nil {
		audio.Attempted = true
		if err := attempt(func() error { return d.sound.Play(ctx) }); err != nil {
			audio.Error = err.Error()
		}
	}
	outcomes = append(outcomes, audio)

	haptic := Outcome{Channel: ChannelHaptic}
	if r.VibrationEnabled && d.haptics != nil {
		haptic.Attempted = true
		if err := attempt(func() error { return d.haptics.Vibrate(ctx) }); err != nil {
			haptic.Error = err.Error()
		}
	}
	outcomes = append(outcomes, haptic)

	return outcomes
}

// requestOnce reports whether this call won the right to request
// platform permission. Permission is requested once per process, not
// on every tick.
func (d *Dispatcher) requestOnce() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.requested {
		return false
	}
	d.requested = true
	return true
}

// attempt runs fn, converting a panic into an error so one misbehaving
// channel cannot take the firing down.
func attempt(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("channel panic: %v", rec)
		}
	}()
	return fn()
}
