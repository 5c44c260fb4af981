package app

import (
	"context"
	"time"

	"quiz-alarm-service/internal/domain"
)

// ConfigStore persists the flat list of alarm configurations.
type ConfigStore interface {
	List(ctx context.Context) ([]domain.AlarmConfig, error)
	Get(ctx context.Context, id int64) (domain.AlarmConfig, error)
	Create(ctx context.Context, cfg domain.AlarmConfig) error
	Update(ctx context.Context, cfg domain.AlarmConfig) error
	Delete(ctx context.Context, id int64) error
}

// QuestionSource is the live question store as seen by the provider.
type QuestionSource interface {
	List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
}

// QuestionStore is the full administrative surface over questions.
type QuestionStore interface {
	QuestionSource
	Get(ctx context.Context, id int64) (domain.Question, error)
	Create(ctx context.Context, q domain.Question) (domain.Question, error)
	Update(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id int64) error
}

// QuestionCache holds per-(exam, type) snapshots for offline firing.
type QuestionCache interface {
	Put(ctx context.Context, exam, questionType string, qs []domain.Question) error
	Get(ctx context.Context, exam, questionType string) ([]domain.Question, error)
}

// StateStore is the persisted local state collaborator: active-alarm
// snapshots, exam preference, answer statistics, notification permission.
type StateStore interface {
	SaveActiveAlarm(ctx context.Context, inst domain.ActiveAlarm) error
	DeleteActiveAlarm(ctx context.Context, alarmID int64) error
	ListActiveAlarms(ctx context.Context) ([]domain.ActiveAlarm, error)

	SetExamPreference(ctx context.Context, exam string) error
	ExamPreference(ctx context.Context) (string, error)

	RecordAnswer(ctx context.Context, exam, questionType string, correct bool) error
	Stats(ctx context.Context) ([]domain.ExamStats, error)

	SetNotificationPermission(ctx context.Context, granted bool) error
	NotificationPermission(ctx context.Context) (bool, error)
}

// AlertBridge delivers audible/tactile alerts to the device. The scheduler
// walks the tone -> clip -> vibrate chain; each step is best-effort.
type AlertBridge interface {
	PlayTone(alarmID int64) error
	PlayClip(alarmID int64) error
	Vibrate(alarmID int64) error
	StopAlert(alarmID int64)
	HapticPulse(strength string)
}

// NotificationBridge schedules platform notifications with an opaque payload.
type NotificationBridge interface {
	Notify(ctx context.Context, payload domain.NotificationPayload) error
	Cancel(ctx context.Context, alarmID int64) error
}

// SnoozeScheduler re-raises a notification after a delay.
type SnoozeScheduler interface {
	ScheduleSnooze(ctx context.Context, payload domain.NotificationPayload, delay time.Duration) error
}

// EventType tags scheduler events for the UI layer.
type EventType string

const (
	EventTriggered EventType = "alarmTriggered"
	EventDismissed EventType = "alarmDismissed"
)

// Event is the process-wide signal surfaced to the UI layer.
type Event struct {
	Type    EventType           `json:"type"`
	Alarm   *domain.ActiveAlarm `json:"alarm,omitempty"`
	AlarmID int64               `json:"alarmId"`
}
