package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(time.Minute)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	state := &SessionState{
		PoolID:  "p1",
		Session: *exam.StartSession([]int{1, 2, 3}),
	}
	if err := s.Put(ctx, "s1", state); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PoolID != "p1" || len(got.Session.Exam) != 3 {
		t.Errorf("stored state mismatch: %+v", got)
	}

	// The store hands back a copy: mutating it must not affect the stored
	// value until the caller writes back.
	got.Session.Score = 99
	again, _ := s.Get(ctx, "s1")
	if again.Session.Score != 0 {
		t.Error("Get must return an independent copy")
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(10 * time.Millisecond)

	_ = s.Put(ctx, "s1", &SessionState{Session: *exam.StartSession([]int{1})})
	time.Sleep(25 * time.Millisecond)

	if _, err := s.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired entry to be gone, got %v", err)
	}
}

func TestMemoryPoolStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPoolStore(time.Minute)

	questions := []model.Question{{
		ID:            1,
		Category:      model.CategoryTrafficLaws,
		Question:      "Q?",
		Options:       []string{"A", "B"},
		CorrectAnswer: "A",
	}}
	if err := s.Put(ctx, "p1", questions); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("stored pool mismatch: %+v", got)
	}
}
