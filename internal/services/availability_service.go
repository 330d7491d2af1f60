package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hireloop/hireloop/internal/availability"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/calendar"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
)

const maxRecurrenceCount = 30

type Recurrence struct {
	Frequency string `json:"frequency"` // daily|weekly
	Interval  int    `json:"interval"`  // every N days/weeks, default 1
	Count     int    `json:"count"`     // occurrences including the first
}

type CreateSlotsInput struct {
	Start      time.Time
	End        time.Time
	Notes      string
	Recurrence *Recurrence
}

type AvailabilityService interface {
	// CreateSlots validates and inserts one open block, expanded to multiple
	// rows when a recurrence rule is given. The whole batch is one
	// transaction; calendar events are created after commit.
	CreateSlots(ctx context.Context, interviewerID uint, in CreateSlotsInput) ([]*models.InterviewerAvailability, error)
	ListForInterviewer(ctx context.Context, interviewerID uint) ([]models.InterviewerAvailability, error)
}

type availabilityService struct {
	tx       postgres.TxRunner
	calendar calendar.Provider
	logger   *logrus.Logger
}

func NewAvailabilityService(tx postgres.TxRunner, cal calendar.Provider, logger *logrus.Logger) AvailabilityService {
	return &availabilityService{tx: tx, calendar: cal, logger: logger}
}

func (s *availabilityService) CreateSlots(ctx context.Context, interviewerID uint, in CreateSlotsInput) ([]*models.InterviewerAvailability, error) {
	const op = "AvailabilityService.CreateSlots"

	if !in.End.After(in.Start) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "end time must be after start time", nil)
	}
	if in.Start.Before(time.Now()) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "slot must start in the future", nil)
	}

	occurrences, err := expandRecurrence(in.Start, in.End, in.Recurrence)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	slots := make([]*models.InterviewerAvailability, 0, len(occurrences))
	for _, occ := range occurrences {
		slots = append(slots, &models.InterviewerAvailability{
			InterviewerID: interviewerID,
			Date:          dateOf(occ.Start),
			StartTime:     occ.Start,
			EndTime:       occ.End,
			Notes:         in.Notes,
		})
	}

	err = s.tx.InTx(ctx, func(st *postgres.Store) error {
		for _, slot := range slots {
			overlap, err := st.Availability.HasOpenOverlap(ctx, interviewerID, slot.Date, slot.StartTime, slot.EndTime)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "overlap check failed", err)
			}
			if overlap {
				return utils.E(utils.CodeConflict, op,
					fmt.Sprintf("already available on %s at this time", slot.Date.Format("2006-01-02")), nil)
			}
		}
		return st.Availability.Create(ctx, slots...)
	})
	if err != nil {
		return nil, err
	}

	// Calendar events strictly after commit; a calendar failure must not
	// lose the stored availability.
	if s.calendar != nil {
		store := s.tx.Store()
		for _, slot := range slots {
			ref, err := s.calendar.CreateEvent(ctx, "Interview availability", slot.StartTime, slot.EndTime, nil)
			if err != nil {
				s.logger.WithError(err).WithField("slot_id", slot.ID).Warn("calendar event creation failed")
				continue
			}
			slot.CalendarEventRef = ref
			if err := store.Availability.Save(ctx, slot); err != nil {
				s.logger.WithError(err).WithField("slot_id", slot.ID).Warn("failed to store calendar ref")
			}
		}
	}

	return slots, nil
}

func (s *availabilityService) ListForInterviewer(ctx context.Context, interviewerID uint) ([]models.InterviewerAvailability, error) {
	const op = "AvailabilityService.ListForInterviewer"

	slots, err := s.tx.Store().Availability.ListForInterviewer(ctx, interviewerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list availability", err)
	}
	return slots, nil
}

func expandRecurrence(start, end time.Time, rec *Recurrence) ([]availability.Interval, error) {
	if rec == nil {
		return []availability.Interval{{Start: start, End: end}}, nil
	}

	interval := rec.Interval
	if interval <= 0 {
		interval = 1
	}
	if rec.Count < 1 || rec.Count > maxRecurrenceCount {
		return nil, fmt.Errorf("recurrence count must be between 1 and %d", maxRecurrenceCount)
	}

	var stepDays int
	switch rec.Frequency {
	case "daily":
		stepDays = interval
	case "weekly":
		stepDays = interval * 7
	default:
		return nil, fmt.Errorf("unsupported recurrence frequency %q", rec.Frequency)
	}

	out := make([]availability.Interval, 0, rec.Count)
	for i := 0; i < rec.Count; i++ {
		offset := i * stepDays
		out = append(out, availability.Interval{
			Start: start.AddDate(0, 0, offset),
			End:   end.AddDate(0, 0, offset),
		})
	}
	return out, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
