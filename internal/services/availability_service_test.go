package services

import (
	"context"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/utils"
)

func TestCreateSlots_SingleBlock(t *testing.T) {
	m := newMemState()
	svc := NewAvailabilityService(newTestTx(m), &stubCalendar{ref: "evt-42"}, testLogger())

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	slots, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{
		Start: start,
		End:   start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].CalendarEventRef != "evt-42" {
		t.Errorf("calendar ref = %q, want evt-42", slots[0].CalendarEventRef)
	}
	if stored := m.slots[slots[0].ID]; stored == nil || stored.CalendarEventRef != "evt-42" {
		t.Error("calendar ref must be persisted after commit")
	}
}

func TestCreateSlots_WeeklyRecurrence(t *testing.T) {
	m := newMemState()
	svc := NewAvailabilityService(newTestTx(m), nil, testLogger())

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	slots, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: &Recurrence{Frequency: "weekly", Count: 4},
	})
	if err != nil {
		t.Fatalf("CreateSlots: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(slots))
	}
	for i, s := range slots {
		want := start.AddDate(0, 0, 7*i)
		if !s.StartTime.Equal(want) {
			t.Errorf("occurrence %d starts %v, want %v", i, s.StartTime, want)
		}
	}
}

func TestCreateSlots_RejectsOverlapWithExisting(t *testing.T) {
	m := newMemState()
	svc := NewAvailabilityService(newTestTx(m), nil, testLogger())

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	if _, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{
		Start: start,
		End:   start.Add(3 * time.Hour),
	}); err != nil {
		t.Fatalf("first block: %v", err)
	}

	_, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{
		Start: start.Add(time.Hour),
		End:   start.Add(2 * time.Hour),
	})
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("expected CONFLICT for overlapping block, got %v", err)
	}
}

func TestCreateSlots_RejectsInvalidRange(t *testing.T) {
	svc := NewAvailabilityService(newTestTx(newMemState()), nil, testLogger())

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{Start: start, End: start})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for empty range, got %v", err)
	}

	past := time.Now().Add(-time.Hour)
	_, err = svc.CreateSlots(context.Background(), 7, CreateSlotsInput{Start: past, End: past.Add(time.Hour)})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for past start, got %v", err)
	}
}

func TestCreateSlots_RecurrenceCountCapped(t *testing.T) {
	svc := NewAvailabilityService(newTestTx(newMemState()), nil, testLogger())

	start := time.Now().Add(24 * time.Hour)
	_, err := svc.CreateSlots(context.Background(), 7, CreateSlotsInput{
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: &Recurrence{Frequency: "daily", Count: 31},
	})
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT for count over cap, got %v", err)
	}
}
