package domain

import (
	"errors"
	"time"
)

// Preference validation errors
var (
	// ErrInvalidQuietHours is returned when quiet hours are enabled but
	// the start or end hour is outside 0-23.
	ErrInvalidQuietHours = errors.New("quiet hours must be within 0-23")

	// ErrInvalidChannel is returned when a delivery channel name is not recognized.
	ErrInvalidChannel = errors.New("invalid delivery channel")
)

// Channel names a delivery mechanism for notifications. Each channel is
// independently enabled per user and may fail independently; the engine
// never assumes any channel is available.
type Channel string

// Known delivery channels
const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// QuietHours suppresses delivery during a daily window. The window may
// wrap midnight (e.g. 22 to 7). Hours are in the user's clock as carried
// by the timestamps handed to the engine; the engine does no timezone
// conversion of its own.
type QuietHours struct {
	Enabled   bool `json:"enabled"`
	StartHour int  `json:"start_hour"` // inclusive, 0-23
	EndHour   int  `json:"end_hour"`   // exclusive, 0-23
}

// Contains reports whether the given instant falls inside the quiet window.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	h := t.Hour()
	if q.StartHour <= q.EndHour {
		return h >= q.StartHour && h < q.EndHour
	}
	// Window wraps midnight.
	return h >= q.StartHour || h < q.EndHour
}

// Preferences holds a user's notification delivery settings. The zero
// value disables nothing: all types allowed, no quiet hours, no channels
// enabled (delivery then only updates the in-queue state).
type Preferences struct {
	// Channels lists the delivery channels the user has enabled.
	Channels []Channel `json:"channels"`

	// DisabledTypes suppresses delivery of specific notification types.
	// Suppressed records stay pending until the preference changes.
	DisabledTypes []NotificationType `json:"disabled_types,omitempty"`

	// QuietHours suppresses all non-high-priority delivery during a
	// daily window.
	QuietHours QuietHours `json:"quiet_hours"`

	// MaxRemindersPerBatch caps how many review reminders a single
	// generation pass may emit. Zero means the default cap.
	MaxRemindersPerBatch int `json:"max_reminders_per_batch,omitempty"`
}

// DefaultPreferences returns the settings applied to a user who has
// never configured notifications: in-app delivery only, no quiet hours.
func DefaultPreferences() Preferences {
	return Preferences{
		Channels: []Channel{ChannelInApp},
	}
}

// Validate checks if the Preferences have valid data.
func (p Preferences) Validate() error {
	for _, c := range p.Channels {
		if !isValidChannel(c) {
			return ErrInvalidChannel
		}
	}

	if p.QuietHours.Enabled {
		if p.QuietHours.StartHour < 0 || p.QuietHours.StartHour > 23 ||
			p.QuietHours.EndHour < 0 || p.QuietHours.EndHour > 23 {
			return ErrInvalidQuietHours
		}
	}

	return nil
}

// ChannelEnabled reports whether the user has opted in to the given channel.
func (p Preferences) ChannelEnabled(c Channel) bool {
	for _, enabled := range p.Channels {
		if enabled == c {
			return true
		}
	}
	return false
}

// TypeEnabled reports whether the user accepts notifications of the given type.
func (p Preferences) TypeEnabled(t NotificationType) bool {
	for _, disabled := range p.DisabledTypes {
		if disabled == t {
			return false
		}
	}
	return true
}

// Suppresses reports whether delivery of the given record should be held
// back at the given instant. High priority records cut through quiet
// hours; disabled types are always held.
func (p Preferences) Suppresses(n *Notification, now time.Time) bool {
	if !p.TypeEnabled(n.Type) {
		return true
	}
	if n.Priority != NotificationPriorityHigh && p.QuietHours.Contains(now) {
		return true
	}
	return false
}

// isValidChannel checks if the given channel is one of the known values.
func isValidChannel(c Channel) bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelPush:
		return true
	default:
		return false
	}
}
