package memory

import (
	"context"
	"testing"

	"quiz-alarm-service/internal/domain"
)

func TestStateStoreAnswerStats(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	for i := 0; i < 3; i++ {
		if err := store.RecordAnswer(ctx, domain.ExamGMAT, "quantitative", i == 0); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := store.RecordAnswer(ctx, domain.ExamLSAT, "logical", true); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(stats))
	}
	if stats[0].Exam != domain.ExamGMAT || stats[0].Correct != 1 || stats[0].Total != 3 {
		t.Fatalf("gmat stats %+v", stats[0])
	}
}

func TestStateStorePermissionAndPreference(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore()

	if granted, _ := store.NotificationPermission(ctx); granted {
		t.Fatalf("permission should default to denied")
	}
	if err := store.SetNotificationPermission(ctx, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if granted, _ := store.NotificationPermission(ctx); !granted {
		t.Fatalf("permission not persisted")
	}

	if err := store.SetExamPreference(ctx, domain.ExamLSAT); err != nil {
		t.Fatalf("set pref: %v", err)
	}
	if exam, _ := store.ExamPreference(ctx); exam != domain.ExamLSAT {
		t.Fatalf("preference not persisted, got %q", exam)
	}
}
