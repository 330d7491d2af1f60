package services

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type FeedbackInput struct {
	SkillEvaluations datatypes.JSON `json:"skill_evaluations"`
	OverallRemark    string         `json:"overall_remark"`
	OverallScore     int            `json:"overall_score"`
}

type FeedbackService interface {
	// SaveDraft upserts feedback for a scheduled interview. Drafts may be
	// overwritten any number of times before submission.
	SaveDraft(ctx context.Context, interviewID uint, in FeedbackInput) (*models.InterviewFeedback, error)
	// Submit finalizes feedback and propagates the verdict to the interview
	// and candidate in one transaction. Billing completion follows after
	// commit; a billing failure is retried by the worker, never surfaced to
	// the interviewer.
	Submit(ctx context.Context, interviewID uint, in FeedbackInput) (*models.InterviewFeedback, error)
	Get(ctx context.Context, interviewID uint) (*models.InterviewFeedback, error)
}

type feedbackService struct {
	tx      postgres.TxRunner
	billing BillingService
	enq     queue.Enqueuer
	logger  *logrus.Logger
}

func NewFeedbackService(tx postgres.TxRunner, billing BillingService, enq queue.Enqueuer, logger *logrus.Logger) FeedbackService {
	return &feedbackService{tx: tx, billing: billing, enq: enq, logger: logger}
}

func (s *feedbackService) SaveDraft(ctx context.Context, interviewID uint, in FeedbackInput) (*models.InterviewFeedback, error) {
	const op = "FeedbackService.SaveDraft"

	var fb *models.InterviewFeedback
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		iv, err := st.Interviews.GetByIDForUpdate(ctx, interviewID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "interview not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load interview", err)
		}
		if iv.Status != models.StatusScheduled {
			return utils.E(utils.CodeConflict, op, "feedback window is closed for this interview", nil)
		}

		fb, err = s.upsert(ctx, st, interviewID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

func (s *feedbackService) Submit(ctx context.Context, interviewID uint, in FeedbackInput) (*models.InterviewFeedback, error) {
	const op = "FeedbackService.Submit"

	if !models.FinalStatuses[in.OverallRemark] {
		return nil, utils.E(utils.CodeInvalidArgument, op, "overall remark must be a final verdict", nil)
	}
	if in.OverallScore < 0 || in.OverallScore > 100 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "overall score must be between 0 and 100", nil)
	}

	var fb *models.InterviewFeedback
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		iv, err := st.Interviews.GetByIDForUpdate(ctx, interviewID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "interview not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load interview", err)
		}
		if iv.Status != models.StatusScheduled {
			return utils.E(utils.CodeConflict, op, "feedback has already been submitted for this interview", nil)
		}

		fb, err = s.upsert(ctx, st, interviewID, in)
		if err != nil {
			return err
		}
		fb.IsSubmitted = true
		if err := st.Feedback.Save(ctx, fb); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to finalize feedback", err)
		}

		// Verdict propagates interview -> candidate; the three rows settle
		// atomically so a crash can never leave a submitted feedback with an
		// unscored interview.
		iv.Status = in.OverallRemark
		iv.Score = in.OverallScore
		iv.TotalScore = 100
		iv.OverallRemark = in.OverallRemark
		if err := st.Interviews.Save(ctx, iv); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update interview", err)
		}

		cand, err := st.Candidates.GetByIDForUpdate(ctx, iv.CandidateID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load candidate", err)
		}
		cand.Status = in.OverallRemark
		cand.Score = in.OverallScore
		cand.TotalScore = 100
		if err := st.Candidates.Save(ctx, cand); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update candidate", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.completeBilling(ctx, interviewID)
	return fb, nil
}

func (s *feedbackService) Get(ctx context.Context, interviewID uint) (*models.InterviewFeedback, error) {
	const op = "FeedbackService.Get"

	fb, err := s.tx.Store().Feedback.GetByInterviewID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no feedback recorded for this interview", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load feedback", err)
	}
	return fb, nil
}

func (s *feedbackService) upsert(ctx context.Context, st *postgres.Store, interviewID uint, in FeedbackInput) (*models.InterviewFeedback, error) {
	const op = "FeedbackService"

	fb, err := st.Feedback.GetByInterviewID(ctx, interviewID)
	switch {
	case err == nil:
		if fb.IsSubmitted {
			return nil, utils.E(utils.CodeConflict, op, "feedback has already been submitted for this interview", nil)
		}
	case errors.Is(err, utils.ErrNotFound):
		fb = &models.InterviewFeedback{InterviewID: interviewID}
	default:
		return nil, utils.E(utils.CodeInternal, op, "failed to load feedback", err)
	}

	fb.SkillEvaluations = in.SkillEvaluations
	fb.OverallRemark = in.OverallRemark
	fb.OverallScore = in.OverallScore
	if err := st.Feedback.Save(ctx, fb); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save feedback", err)
	}
	return fb, nil
}

// completeBilling runs after the feedback transaction committed. A failure
// here only delays billing: the retry message is idempotent against the
// IsBillingCompleted flag.
func (s *feedbackService) completeBilling(ctx context.Context, interviewID uint) {
	err := s.billing.Complete(ctx, interviewID)
	if err == nil {
		return
	}
	s.logger.WithError(err).WithField("interview_id", interviewID).Warn("billing completion failed, scheduling retry")

	err = s.enq.Enqueue(ctx, queue.StreamNotifications, queue.Message{
		Kind: queue.KindBillingRetry,
		Data: map[string]any{"interview_id": interviewID},
	})
	if err != nil {
		s.logger.WithError(err).WithField("interview_id", interviewID).Error("failed to enqueue billing retry")
	}
}
