package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"quiz-alarm-service/internal/domain"
)

func TestConfigStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewConfigStore()

	cfg := domain.AlarmConfig{
		ID:           1700000000000,
		Name:         "morning drill",
		Time:         "06:00",
		Days:         [7]bool{false, true, true, true, true, true, false},
		Exam:         domain.ExamGMAT,
		QuestionType: "quantitative",
		Subcategory:  domain.AnySubcategory,
		Difficulty:   "medium",
		IsActive:     true,
	}
	if err := store.Create(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}

	cfg.IsActive = false
	if err := store.Update(ctx, cfg); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = store.Get(ctx, cfg.ID)
	if got.IsActive {
		t.Fatalf("update lost")
	}

	if err := store.Delete(ctx, cfg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, cfg.ID); !errors.Is(err, domain.ErrAlarmNotFound) {
		t.Fatalf("expected ErrAlarmNotFound, got %v", err)
	}
}

func TestConfigStoreListSortsByID(t *testing.T) {
	ctx := context.Background()
	store := NewConfigStore()
	for _, id := range []int64{3, 1, 2} {
		if err := store.Create(ctx, domain.AlarmConfig{ID: id, Time: "07:30"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if list[i].ID != want {
			t.Fatalf("unexpected order: %+v", list)
		}
	}
}
