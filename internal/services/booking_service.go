package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hireloop/hireloop/internal/availability"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
)

// bookingWindow is the fixed length of a booked interview.
const bookingWindow = time.Hour

// dispatchCooldown guards against two operators fanning out duplicate
// requests for the same candidate.
const dispatchCooldown = time.Hour

type DispatchInput struct {
	CandidateID   uint
	SlotIDs       []uint
	ProposedStart time.Time
	RequestedBy   string // JWT subject of the dispatching client operator
}

type BookingService interface {
	// Dispatch fans a booking request out to every offered slot: one
	// persisted BookingRequest per slot carrying fresh accept/reject tokens,
	// then a notification to each interviewer after commit.
	Dispatch(ctx context.Context, in DispatchInput) ([]*models.BookingRequest, error)
}

type bookingService struct {
	tx      postgres.TxRunner
	enq     queue.Enqueuer
	logger  *logrus.Logger
	baseURL string
}

func NewBookingService(tx postgres.TxRunner, enq queue.Enqueuer, logger *logrus.Logger, baseURL string) BookingService {
	return &bookingService{tx: tx, enq: enq, logger: logger, baseURL: baseURL}
}

func (s *bookingService) Dispatch(ctx context.Context, in DispatchInput) ([]*models.BookingRequest, error) {
	const op = "BookingService.Dispatch"

	if len(in.SlotIDs) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one slot is required", nil)
	}
	if in.RequestedBy == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "requester is required", nil)
	}
	if in.ProposedStart.Before(time.Now()) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "proposed time must be in the future", nil)
	}

	window := availability.Interval{Start: in.ProposedStart, End: in.ProposedStart.Add(bookingWindow)}

	var reqs []*models.BookingRequest
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		cand, err := st.Candidates.GetByIDForUpdate(ctx, in.CandidateID)
		if err != nil {
			return utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		if cand.Status != models.StatusNotScheduled {
			return utils.E(utils.CodeConflict, op, "candidate is already scheduled or processed", nil)
		}

		now := time.Now().UTC()
		if cand.LastScheduledInitiateAt != nil && now.Before(cand.LastScheduledInitiateAt.Add(dispatchCooldown)) {
			return utils.E(utils.CodeConflict, op,
				"scheduling was initiated within the last hour; wait for it to settle", nil)
		}

		expiry := now.Add(time.Hour)
		for _, slotID := range in.SlotIDs {
			slot, err := st.Availability.GetByID(ctx, slotID)
			if err != nil {
				return utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("slot %d not found", slotID), err)
			}
			if !slot.Open() {
				return utils.E(utils.CodeConflict, op, fmt.Sprintf("slot %d is no longer available", slotID), nil)
			}
			if !availability.Contains(availability.Interval{Start: slot.StartTime, End: slot.EndTime}, window) {
				return utils.E(utils.CodeInvalidArgument, op,
					fmt.Sprintf("proposed time does not fit inside slot %d", slotID), nil)
			}

			reqs = append(reqs, &models.BookingRequest{
				CandidateID:   cand.ID,
				SlotID:        slot.ID,
				InterviewerID: slot.InterviewerID,
				RequestedBy:   in.RequestedBy,
				ProposedStart: in.ProposedStart,
				AcceptToken:   uuid.NewString(),
				RejectToken:   uuid.NewString(),
				Status:        models.RequestPending,
				ExpiresAt:     expiry,
			})
		}

		if err := st.Requests.CreateBatch(ctx, reqs); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to persist booking requests", err)
		}

		// Stamp the cooldown window last, inside the same transaction.
		cand.LastScheduledInitiateAt = &now
		if err := st.Candidates.Save(ctx, cand); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to stamp cooldown", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyInterviewers(ctx, reqs)
	return reqs, nil
}

// notifyInterviewers is a post-commit side effect; at-least-once is fine,
// notifying on a rolled-back dispatch is not.
func (s *bookingService) notifyInterviewers(ctx context.Context, reqs []*models.BookingRequest) {
	store := s.tx.Store()
	for _, req := range reqs {
		iv, err := store.Interviewers.GetByID(ctx, req.InterviewerID)
		if err != nil {
			s.logger.WithError(err).WithField("interviewer_id", req.InterviewerID).
				Warn("skipping notification for unknown interviewer")
			continue
		}

		err = s.enq.Enqueue(ctx, queue.StreamNotifications, queue.Message{
			Kind:      queue.KindBookingRequest,
			Recipient: iv.Email,
			Subject:   "Interview opportunity available - confirm your availability",
			Data: map[string]any{
				"interviewer_name": iv.Name,
				"proposed_start":   req.ProposedStart.Format(time.RFC3339),
				"accept_link":      fmt.Sprintf("%s/confirmation/%s", s.baseURL, req.AcceptToken),
				"reject_link":      fmt.Sprintf("%s/confirmation/%s", s.baseURL, req.RejectToken),
				"expires_at":       req.ExpiresAt.Format(time.RFC3339),
			},
		})
		if err != nil {
			s.logger.WithError(err).WithField("request_id", req.ID).Warn("failed to enqueue booking notification")
		}
	}
}
