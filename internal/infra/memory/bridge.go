package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"quiz-alarm-service/internal/domain"
)

var errUnavailable = errors.New("alert mode unavailable")

// AlertRecorder implements app.AlertBridge by recording calls. It doubles as
// the no-device fallback in production wiring and as a test probe; the Fail*
// knobs simulate unavailable alert modes.
type AlertRecorder struct {
	mu       sync.Mutex
	FailTone bool
	FailClip bool
	FailVib  bool

	Tones   []int64
	Clips   []int64
	Vibes   []int64
	Stops   []int64
	Haptics []string
}

func NewAlertRecorder() *AlertRecorder { return &AlertRecorder{} }

func (a *AlertRecorder) PlayTone(alarmID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailTone {
		return errUnavailable
	}
	a.Tones = append(a.Tones, alarmID)
	return nil
}

func (a *AlertRecorder) PlayClip(alarmID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailClip {
		return errUnavailable
	}
	a.Clips = append(a.Clips, alarmID)
	return nil
}

func (a *AlertRecorder) Vibrate(alarmID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailVib {
		return errUnavailable
	}
	a.Vibes = append(a.Vibes, alarmID)
	return nil
}

func (a *AlertRecorder) StopAlert(alarmID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Stops = append(a.Stops, alarmID)
}

func (a *AlertRecorder) HapticPulse(strength string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Haptics = append(a.Haptics, strength)
}

// Started reports whether any alert mode ran for the alarm.
func (a *AlertRecorder) Started(alarmID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, lists := range [][]int64{a.Tones, a.Clips, a.Vibes} {
		for _, id := range lists {
			if id == alarmID {
				return true
			}
		}
	}
	return false
}

// NotificationRecorder implements app.NotificationBridge in memory.
type NotificationRecorder struct {
	mu       sync.Mutex
	Notified []domain.NotificationPayload
	Canceled []int64
}

func NewNotificationRecorder() *NotificationRecorder { return &NotificationRecorder{} }

func (n *NotificationRecorder) Notify(_ context.Context, payload domain.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notified = append(n.Notified, payload)
	return nil
}

func (n *NotificationRecorder) Cancel(_ context.Context, alarmID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Canceled = append(n.Canceled, alarmID)
	return nil
}

// SnoozeTimer implements app.SnoozeScheduler with plain timers, used when
// Redis (and therefore the job queue) is not configured.
type SnoozeTimer struct {
	deliver func(domain.NotificationPayload)

	mu        sync.Mutex
	Scheduled []SnoozeEntry
}

type SnoozeEntry struct {
	Payload domain.NotificationPayload
	Delay   time.Duration
}

func NewSnoozeTimer(deliver func(domain.NotificationPayload)) *SnoozeTimer {
	return &SnoozeTimer{deliver: deliver}
}

func (t *SnoozeTimer) ScheduleSnooze(_ context.Context, payload domain.NotificationPayload, delay time.Duration) error {
	t.mu.Lock()
	t.Scheduled = append(t.Scheduled, SnoozeEntry{Payload: payload, Delay: delay})
	t.mu.Unlock()
	if t.deliver != nil {
		time.AfterFunc(delay, func() { t.deliver(payload) })
	}
	return nil
}

// Entries returns a copy of everything scheduled so far.
func (t *SnoozeTimer) Entries() []SnoozeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SnoozeEntry, len(t.Scheduled))
	copy(out, t.Scheduled)
	return out
}
