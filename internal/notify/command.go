package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandSound plays the audio cue by shelling out to a local player
// (afplay, paplay, aplay...). The acquired process is scoped to one
// playback and discarded afterwards.
type CommandSound struct {
	Command string
	File    string
}

// Play runs the player once. Any failure is returned for logging; the
// dispatcher never propagates it further.
func (c *CommandSound) Play(ctx context.Context) error {
	if c.Command == "" {
		return fmt.Errorf("no sound command configured")
	}
	args := []string{}
	if c.File != "" {
		args = append(args, c.File)
	}
	if out, err := exec.CommandContext(ctx, c.Command, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("play sound: %w (%s)", err, out)
	}
	return nil
}

// CommandHaptics triggers a vibration pattern via an external command,
// for hosts that expose one (e.g. a phone-bridge script). Fire and
// forget: the dispatcher only logs failures.
type CommandHaptics struct {
	Command string
	Args    []string
}

func (c *CommandHaptics) Vibrate(ctx context.Context) error {
	if c.Command == "" {
		return fmt.Errorf("no haptic command configured")
	}
	if out, err := exec.CommandContext(ctx, c.Command, c.Args...).CombinedOutput(); err != nil {
		return fmt.Errorf("vibrate: %w (%s)", err, out)
	}
	return nil
}
