package redis

import (
	"context"
	"testing"
	"time"

	"quiz-alarm-service/internal/domain"
)

func TestStateStoreActiveAlarmRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := newClient(t)
	store := NewStateStore(client)

	q := sampleQuestions(1)[0]
	inst := domain.ActiveAlarm{
		AlarmID:    1700000000000,
		FiredAt:    time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC),
		AlarmTime:  "06:00",
		Question:   &q,
		IsActive:   true,
		Generation: 2,
	}
	if err := store.SaveActiveAlarm(ctx, inst); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("alarm:active:1700000000000") {
		t.Fatalf("expected snapshot key to be set")
	}

	got, err := store.ListActiveAlarms(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one instance, got %d", len(got))
	}
	if got[0].AlarmTime != "06:00" || !got[0].FiredAt.Equal(inst.FiredAt) || got[0].Generation != 2 {
		t.Fatalf("round trip mismatch: %+v", got[0])
	}
	if got[0].Question == nil || got[0].Question.CorrectAnswer != "4" {
		t.Fatalf("question binding lost: %+v", got[0].Question)
	}

	if err := store.DeleteActiveAlarm(ctx, inst.AlarmID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("alarm:active:1700000000000") {
		t.Fatalf("expected snapshot key to be removed")
	}
	got, _ = store.ListActiveAlarms(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty list after delete")
	}
}

func TestStateStoreSkipsCorruptSnapshots(t *testing.T) {
	ctx := context.Background()
	client, mr := newClient(t)
	store := NewStateStore(client)

	mr.Set("alarm:active:99", "{broken")
	mr.SAdd("alarm:active:ids", "99")

	got, err := store.ListActiveAlarms(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("corrupt snapshot should be skipped, got %+v", got)
	}
}

func TestStateStoreStats(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	store := NewStateStore(client)

	for i := 0; i < 4; i++ {
		if err := store.RecordAnswer(ctx, domain.ExamGMAT, "quantitative", i%2 == 0); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Correct != 2 || stats[0].Total != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStateStorePermissionAndPreference(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	store := NewStateStore(client)

	if granted, err := store.NotificationPermission(ctx); err != nil || granted {
		t.Fatalf("expected default denied, got %v %v", granted, err)
	}
	if err := store.SetNotificationPermission(ctx, true); err != nil {
		t.Fatalf("set permission: %v", err)
	}
	if granted, _ := store.NotificationPermission(ctx); !granted {
		t.Fatalf("permission not persisted")
	}

	if exam, err := store.ExamPreference(ctx); err != nil || exam != "" {
		t.Fatalf("expected empty preference, got %q %v", exam, err)
	}
	if err := store.SetExamPreference(ctx, domain.ExamGMAT); err != nil {
		t.Fatalf("set pref: %v", err)
	}
	if exam, _ := store.ExamPreference(ctx); exam != domain.ExamGMAT {
		t.Fatalf("preference not persisted, got %q", exam)
	}
}
