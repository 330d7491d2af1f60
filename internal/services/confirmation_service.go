package services

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/availability"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/calendar"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// exclusionWindow keeps an interviewer's confirmed interviews at least an
// hour apart: a new booking at t is rejected while another scheduled
// interview sits strictly inside (t-1h, t+1h).
const exclusionWindow = time.Hour

type ConfirmResult struct {
	Accepted  bool              `json:"accepted"`
	Interview *models.Interview `json:"interview,omitempty"`
}

type ConfirmationService interface {
	// Confirm settles a booking request from an emailed link. Which token
	// column the value matches decides accept versus reject; everything else
	// about the link is untrusted. First valid accept wins, every later
	// token for the same candidate observes the settled state.
	Confirm(ctx context.Context, token string) (*ConfirmResult, error)
}

type confirmationService struct {
	tx       postgres.TxRunner
	rates    RateCatalog
	enq      queue.Enqueuer
	calendar calendar.Provider
	logger   *logrus.Logger
}

func NewConfirmationService(tx postgres.TxRunner, rates RateCatalog, enq queue.Enqueuer, cal calendar.Provider, logger *logrus.Logger) ConfirmationService {
	return &confirmationService{tx: tx, rates: rates, enq: enq, calendar: cal, logger: logger}
}

func (s *confirmationService) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	const op = "ConfirmationService.Confirm"

	var (
		result  ConfirmResult
		settled *models.BookingRequest
		expired bool
	)
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		req, err := st.Requests.FindByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeInvalidArgument, op, "invalid confirmation link", nil)
			}
			return utils.E(utils.CodeInternal, op, "failed to load booking request", err)
		}
		settled = req

		if req.Status != models.RequestPending {
			return utils.E(utils.CodeConflict, op, "this request has already been handled", nil)
		}

		if time.Now().After(req.ExpiresAt) {
			// Commit the EXP mark, the error is raised after the transaction.
			req.Status = models.RequestExpired
			if err := st.Requests.Save(ctx, req); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to expire request", err)
			}
			expired = true
			return nil
		}

		// Both actions re-validate the link's referents first; a vanished
		// candidate or slot fails closed like a bad token.
		cand, err := st.Candidates.GetByIDForUpdate(ctx, req.CandidateID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeInvalidArgument, op, "invalid confirmation link", nil)
			}
			return utils.E(utils.CodeInternal, op, "failed to load candidate", err)
		}
		slot, err := st.Availability.GetByIDForUpdate(ctx, req.SlotID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeInvalidArgument, op, "invalid confirmation link", nil)
			}
			return utils.E(utils.CodeInternal, op, "failed to load slot", err)
		}

		if token == req.RejectToken {
			req.Status = models.RequestRejected
			if err := st.Requests.Save(ctx, req); err != nil {
				return utils.E(utils.CodeInternal, op, "failed to record rejection", err)
			}
			return nil
		}

		iv, err := s.accept(ctx, st, req, cand, slot)
		if err != nil {
			return err
		}
		result = ConfirmResult{Accepted: true, Interview: iv}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, utils.E(utils.CodeInvalidArgument, op, "this confirmation link has expired", nil)
	}

	if result.Accepted {
		s.afterAccept(ctx, settled, result.Interview)
	}
	return &result, nil
}

// accept runs inside the confirmation transaction: all four rows (request,
// candidate, slot, interview) settle together or not at all.
func (s *confirmationService) accept(ctx context.Context, st *postgres.Store, req *models.BookingRequest, cand *models.Candidate, slot *models.InterviewerAvailability) (*models.Interview, error) {
	const op = "ConfirmationService.Confirm"

	if cand.Status != models.StatusNotScheduled {
		// Another interviewer's accept already won.
		return nil, utils.E(utils.CodeConflict, op, "this candidate has already been scheduled", nil)
	}

	window := availability.Interval{Start: req.ProposedStart, End: req.ProposedStart.Add(bookingWindow)}
	if !slot.Open() || !availability.Contains(availability.Interval{Start: slot.StartTime, End: slot.EndTime}, window) {
		return nil, utils.E(utils.CodeConflict, op, "this slot is no longer available", nil)
	}

	busy, err := st.Interviews.HasScheduledWithin(ctx, req.InterviewerID,
		req.ProposedStart.Add(-exclusionWindow), req.ProposedStart.Add(exclusionWindow))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "schedule conflict check failed", err)
	}
	if busy {
		return nil, utils.E(utils.CodeConflict, op, "you have another interview scheduled around this time", nil)
	}

	bracket := BracketForExperience(cand.ExperienceYears, cand.ExperienceMonths)
	clientAmount, err := s.rates.ClientRate(ctx, cand.ClientOrgID, bracket)
	if err != nil {
		return nil, err
	}
	interviewerAmount, err := s.rates.InterviewerRate(ctx, bracket)
	if err != nil {
		return nil, err
	}

	interviewerID := req.InterviewerID
	iv := &models.Interview{
		CandidateID:       cand.ID,
		InterviewerID:     &interviewerID,
		Status:            models.StatusScheduled,
		ScheduledAt:       req.ProposedStart,
		ClientAmount:      clientAmount,
		InterviewerAmount: interviewerAmount,
	}
	if err := st.Interviews.Create(ctx, iv); err != nil {
		// Unique (interviewer, scheduled_at) backstop for races the row
		// locks could not see, e.g. two candidates accepting sibling slots.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.E(utils.CodeConflict, op, "this slot is no longer available", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}

	if err := s.bookSlot(ctx, st, slot, cand.ID, window); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to book slot", err)
	}

	cand.Status = models.StatusScheduled
	if err := st.Candidates.Save(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update candidate", err)
	}

	req.Status = models.RequestAccepted
	if err := st.Requests.Save(ctx, req); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record acceptance", err)
	}
	return iv, nil
}

// bookSlot marks the booked range on the slot and spawns open sibling rows
// for remainders long enough to offer again. Siblings inherit the calendar
// ref so the external event stays linked.
func (s *confirmationService) bookSlot(ctx context.Context, st *postgres.Store, slot *models.InterviewerAvailability, candidateID uint, booked availability.Interval) error {
	remainders := availability.SplitAround(
		availability.Interval{Start: slot.StartTime, End: slot.EndTime},
		booked, availability.MinSlotLength)

	for _, rem := range remainders {
		sibling := &models.InterviewerAvailability{
			InterviewerID:    slot.InterviewerID,
			Date:             dateOf(rem.Start),
			StartTime:        rem.Start,
			EndTime:          rem.End,
			Notes:            slot.Notes,
			CalendarEventRef: slot.CalendarEventRef,
		}
		if err := st.Availability.Create(ctx, sibling); err != nil {
			return err
		}
	}

	slot.BookedByID = &candidateID
	slot.BookedStart = &booked.Start
	slot.BookedEnd = &booked.End
	slot.IsScheduled = true
	return st.Availability.Save(ctx, slot)
}

// afterAccept handles post-commit side effects: calendar event and the three
// confirmation emails. None of these may fail the already-settled booking.
func (s *confirmationService) afterAccept(ctx context.Context, req *models.BookingRequest, iv *models.Interview) {
	store := s.tx.Store()

	cand, err := store.Candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		s.logger.WithError(err).WithField("candidate_id", req.CandidateID).Error("post-accept candidate load failed")
		return
	}
	interviewer, err := store.Interviewers.GetByID(ctx, req.InterviewerID)
	if err != nil {
		s.logger.WithError(err).WithField("interviewer_id", req.InterviewerID).Error("post-accept interviewer load failed")
		return
	}

	if s.calendar != nil {
		ref, err := s.calendar.CreateEvent(ctx, "Interview: "+cand.Name,
			iv.ScheduledAt, iv.ScheduledAt.Add(bookingWindow),
			[]string{interviewer.Email, cand.Email})
		if err != nil {
			s.logger.WithError(err).WithField("interview_id", iv.ID).Warn("calendar event creation failed")
		} else {
			iv.CalendarEventRef = ref
			if err := store.Interviews.Save(ctx, iv); err != nil {
				s.logger.WithError(err).WithField("interview_id", iv.ID).Warn("failed to store calendar ref")
			}
		}
	}

	when := iv.ScheduledAt.Format(time.RFC1123)
	s.notify(ctx, interviewer.Email, "Interview confirmed", map[string]any{
		"candidate_name": cand.Name,
		"scheduled_at":   when,
	})
	s.notify(ctx, cand.Email, "Your interview is scheduled", map[string]any{
		"interviewer_name": interviewer.Name,
		"scheduled_at":     when,
	})

	if contact, err := store.Contacts.GetByUserID(ctx, req.RequestedBy); err == nil {
		s.notify(ctx, contact.Email, "Interview scheduled for "+cand.Name, map[string]any{
			"candidate_name":   cand.Name,
			"interviewer_name": interviewer.Name,
			"scheduled_at":     when,
		})
	} else {
		s.logger.WithError(err).WithField("user_id", req.RequestedBy).Warn("requesting contact not found")
	}
}

func (s *confirmationService) notify(ctx context.Context, to, subject string, data map[string]any) {
	err := s.enq.Enqueue(ctx, queue.StreamNotifications, queue.Message{
		Kind:      queue.KindInterviewConfirmed,
		Recipient: to,
		Subject:   subject,
		Data:      data,
	})
	if err != nil {
		s.logger.WithError(err).WithField("recipient", to).Warn("failed to enqueue confirmation notification")
	}
}
