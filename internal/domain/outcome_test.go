package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewReviewOutcome(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	for quality := MinQuality; quality <= MaxQuality; quality++ {
		outcome, err := NewReviewOutcome(quality, nil, now)
		if err != nil {
			t.Fatalf("Expected quality %d to be valid, got %v", quality, err)
		}
		if outcome.Quality != quality {
			t.Errorf("Expected quality %d, got %d", quality, outcome.Quality)
		}
	}

	// Out-of-range qualities are rejected, not clamped.
	for _, quality := range []int{-1, 6, 42} {
		_, err := NewReviewOutcome(quality, nil, now)
		if !errors.Is(err, ErrQualityOutOfRange) {
			t.Errorf("Expected quality %d to fail with ErrQualityOutOfRange, got %v", quality, err)
		}
		if !errors.Is(err, ErrInvalidOutcome) {
			t.Errorf("Expected quality error to wrap ErrInvalidOutcome, got %v", err)
		}
	}

	// Negative response time is rejected.
	negative := -time.Second
	_, err := NewReviewOutcome(4, &negative, now)
	if !errors.Is(err, ErrNegativeResponseTime) {
		t.Errorf("Expected ErrNegativeResponseTime, got %v", err)
	}

	// Missing timestamp is rejected.
	_, err = NewReviewOutcome(4, nil, time.Time{})
	if !errors.Is(err, ErrOutcomeTimestampZero) {
		t.Errorf("Expected ErrOutcomeTimestampZero, got %v", err)
	}
}

func TestReviewOutcomeIsSuccessful(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	testCases := []struct {
		quality    int
		successful bool
	}{
		{0, false},
		{1, false},
		{2, false},
		{3, true},
		{4, true},
		{5, true},
	}

	for _, tc := range testCases {
		outcome, err := NewReviewOutcome(tc.quality, nil, now)
		if err != nil {
			t.Fatalf("Expected no error for quality %d, got %v", tc.quality, err)
		}
		if outcome.IsSuccessful() != tc.successful {
			t.Errorf("Expected quality %d successful=%v", tc.quality, tc.successful)
		}
	}
}

func TestPreferencesQuietHours(t *testing.T) {
	t.Parallel()

	at := func(hour int) time.Time {
		return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
	}

	// Plain window.
	q := QuietHours{Enabled: true, StartHour: 9, EndHour: 17}
	if !q.Contains(at(12)) {
		t.Error("Expected 12:30 to be inside 9-17 quiet hours")
	}
	if q.Contains(at(8)) {
		t.Error("Expected 8:30 to be outside 9-17 quiet hours")
	}
	if q.Contains(at(17)) {
		t.Error("Expected 17:30 to be outside 9-17 quiet hours (end exclusive)")
	}

	// Window wrapping midnight.
	q = QuietHours{Enabled: true, StartHour: 22, EndHour: 7}
	if !q.Contains(at(23)) {
		t.Error("Expected 23:30 to be inside 22-7 quiet hours")
	}
	if !q.Contains(at(3)) {
		t.Error("Expected 3:30 to be inside 22-7 quiet hours")
	}
	if q.Contains(at(12)) {
		t.Error("Expected 12:30 to be outside 22-7 quiet hours")
	}

	// Disabled window never matches.
	q.Enabled = false
	if q.Contains(at(23)) {
		t.Error("Expected disabled quiet hours never to contain any instant")
	}
}

func TestPreferencesSuppresses(t *testing.T) {
	t.Parallel()
	quiet := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	loud := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	prefs := Preferences{
		Channels:      []Channel{ChannelInApp},
		DisabledTypes: []NotificationType{NotificationTypeReflectionPrompt},
		QuietHours:    QuietHours{Enabled: true, StartHour: 22, EndHour: 7},
	}

	reminder := newTestNotification(t)
	if prefs.Suppresses(reminder, loud) {
		t.Error("Expected an enabled type outside quiet hours not to be suppressed")
	}
	if !prefs.Suppresses(reminder, quiet) {
		t.Error("Expected a medium priority record to be suppressed during quiet hours")
	}

	reminder.Priority = NotificationPriorityHigh
	if prefs.Suppresses(reminder, quiet) {
		t.Error("Expected a high priority record to cut through quiet hours")
	}

	prompt := newTestNotification(t)
	prompt.Type = NotificationTypeReflectionPrompt
	if !prefs.Suppresses(prompt, loud) {
		t.Error("Expected a disabled type to be suppressed at any time")
	}
}
