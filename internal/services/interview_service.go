package services

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InterviewService interface {
	Get(ctx context.Context, id uint) (*models.Interview, error)
	// Reschedule moves a scheduled interview to a new time with the same
	// interviewer. The old row is archived and a replacement created linking
	// back to it, so the chain stays a flat self-reference.
	Reschedule(ctx context.Context, id uint, newStart time.Time) (*models.Interview, error)
	// History returns the reschedule chain, newest first.
	History(ctx context.Context, id uint) ([]models.Interview, error)
}

type interviewService struct {
	tx     postgres.TxRunner
	enq    queue.Enqueuer
	logger *logrus.Logger
}

func NewInterviewService(tx postgres.TxRunner, enq queue.Enqueuer, logger *logrus.Logger) InterviewService {
	return &interviewService{tx: tx, enq: enq, logger: logger}
}

func (s *interviewService) Get(ctx context.Context, id uint) (*models.Interview, error) {
	const op = "InterviewService.Get"

	iv, err := s.tx.Store().Interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load interview", err)
	}
	return iv, nil
}

func (s *interviewService) Reschedule(ctx context.Context, id uint, newStart time.Time) (*models.Interview, error) {
	const op = "InterviewService.Reschedule"

	if !newStart.After(time.Now()) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "new time must be in the future", nil)
	}

	var (
		replacement *models.Interview
		interviewer *uint
	)
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		old, err := st.Interviews.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "interview not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load interview", err)
		}
		if old.Status != models.StatusScheduled {
			return utils.E(utils.CodeConflict, op, "only scheduled interviews can be rescheduled", nil)
		}
		if old.TimesProcessed >= models.MaxRescheduleAttempts {
			return utils.E(utils.CodeConflict, op, "reschedule limit reached for this interview", nil)
		}
		if old.InterviewerID == nil {
			return utils.E(utils.CodeFailedPrecondition, op, "interview has no interviewer assigned", nil)
		}

		busy, err := st.Interviews.HasScheduledWithin(ctx, *old.InterviewerID,
			newStart.Add(-exclusionWindow), newStart.Add(exclusionWindow))
		if err != nil {
			return utils.E(utils.CodeInternal, op, "schedule conflict check failed", err)
		}
		if busy {
			return utils.E(utils.CodeConflict, op, "the interviewer has another interview around this time", nil)
		}

		old.Archived = true
		if err := st.Interviews.Save(ctx, old); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to retire old interview", err)
		}

		prevID := old.ID
		replacement = &models.Interview{
			CandidateID:         old.CandidateID,
			InterviewerID:       old.InterviewerID,
			Status:              models.StatusScheduled,
			ScheduledAt:         newStart,
			PreviousInterviewID: &prevID,
			TimesProcessed:      old.TimesProcessed + 1,
			ClientAmount:        old.ClientAmount,
			InterviewerAmount:   old.InterviewerAmount,
		}
		if err := st.Interviews.Create(ctx, replacement); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.E(utils.CodeConflict, op, "the interviewer is already booked at this time", nil)
			}
			return utils.E(utils.CodeInternal, op, "failed to create rescheduled interview", err)
		}
		interviewer = old.InterviewerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyReschedule(ctx, replacement, interviewer)
	return replacement, nil
}

func (s *interviewService) History(ctx context.Context, id uint) ([]models.Interview, error) {
	const op = "InterviewService.History"

	chain, err := s.tx.Store().Interviews.History(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load history", err)
	}
	return chain, nil
}

func (s *interviewService) notifyReschedule(ctx context.Context, iv *models.Interview, interviewerID *uint) {
	store := s.tx.Store()
	when := iv.ScheduledAt.Format(time.RFC1123)

	if cand, err := store.Candidates.GetByID(ctx, iv.CandidateID); err == nil {
		s.enqueue(ctx, cand.Email, "Your interview has been rescheduled", when)
	} else {
		s.logger.WithError(err).WithField("candidate_id", iv.CandidateID).Warn("reschedule notification skipped")
	}

	if interviewerID == nil {
		return
	}
	if interviewer, err := store.Interviewers.GetByID(ctx, *interviewerID); err == nil {
		s.enqueue(ctx, interviewer.Email, "Interview rescheduled", when)
	} else {
		s.logger.WithError(err).WithField("interviewer_id", *interviewerID).Warn("reschedule notification skipped")
	}
}

func (s *interviewService) enqueue(ctx context.Context, to, subject, when string) {
	err := s.enq.Enqueue(ctx, queue.StreamNotifications, queue.Message{
		Kind:      queue.KindInterviewConfirmed,
		Recipient: to,
		Subject:   subject,
		Data:      map[string]any{"scheduled_at": when},
	})
	if err != nil {
		s.logger.WithError(err).WithField("recipient", to).Warn("failed to enqueue reschedule notification")
	}
}
