package services

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/queue"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Invoices come due on the 10th of the month after the billing month.
const dueDayOfNextMonth = 9

type BillingService interface {
	// Complete folds a finished interview into the monthly pending buckets:
	// one client billing record and one interviewer payment record per
	// (owner, month). Idempotent; replays are absorbed by the
	// IsBillingCompleted flag under the interview row lock.
	Complete(ctx context.Context, interviewID uint) error
	List(ctx context.Context, recordType string, month time.Time) ([]models.BillingRecord, error)
}

type billingService struct {
	tx     postgres.TxRunner
	rates  RateCatalog
	alerts queue.Enqueuer
	logger *logrus.Logger
	now    func() time.Time
}

func NewBillingService(tx postgres.TxRunner, rates RateCatalog, alerts queue.Enqueuer, logger *logrus.Logger) BillingService {
	return &billingService{tx: tx, rates: rates, alerts: alerts, logger: logger, now: time.Now}
}

func (s *billingService) Complete(ctx context.Context, interviewID uint) error {
	const op = "BillingService.Complete"

	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		iv, err := st.Interviews.GetByIDForUpdate(ctx, interviewID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "interview not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load interview", err)
		}
		if iv.IsBillingCompleted {
			return nil
		}
		if iv.InterviewerID == nil {
			return utils.E(utils.CodeFailedPrecondition, op, "interview has no interviewer assigned", nil)
		}

		cand, err := st.Candidates.GetByID(ctx, iv.CandidateID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load candidate", err)
		}

		// Amounts are normally priced at confirmation; recompute only when
		// still zero (e.g. rows migrated in before pricing existed).
		if iv.ClientAmount.IsZero() || iv.InterviewerAmount.IsZero() {
			if err := s.priceInterview(ctx, cand, iv); err != nil {
				return err
			}
		}

		// Buckets are keyed by the month the aggregation runs in, not the
		// month the interview took place: late feedback still lands in an
		// invoice whose due date is ahead of it.
		month := monthOf(s.now())
		if err := s.accumulate(ctx, st, models.RecordClientBilling, cand.ClientOrgID, month, iv.ClientAmount); err != nil {
			return err
		}
		if err := s.accumulate(ctx, st, models.RecordInterviewerPayment, *iv.InterviewerID, month, iv.InterviewerAmount); err != nil {
			return err
		}

		iv.IsBillingCompleted = true
		if err := st.Interviews.Save(ctx, iv); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to mark billing complete", err)
		}
		return nil
	})
	if err != nil && utils.IsCode(err, utils.CodeFailedPrecondition) {
		s.opsAlert(ctx, interviewID, err)
	}
	return err
}

func (s *billingService) priceInterview(ctx context.Context, cand *models.Candidate, iv *models.Interview) error {
	bracket := BracketForExperience(cand.ExperienceYears, cand.ExperienceMonths)

	if iv.ClientAmount.IsZero() {
		amount, err := s.rates.ClientRate(ctx, cand.ClientOrgID, bracket)
		if err != nil {
			return err
		}
		iv.ClientAmount = amount
	}
	if iv.InterviewerAmount.IsZero() {
		amount, err := s.rates.InterviewerRate(ctx, bracket)
		if err != nil {
			return err
		}
		iv.InterviewerAmount = amount
	}
	return nil
}

// accumulate adds amount into the owner's pending bucket for the month,
// creating the bucket when it does not exist yet. The bucket row lock
// serializes concurrent completions landing in the same month.
func (s *billingService) accumulate(ctx context.Context, st *postgres.Store, recordType string, ownerID uint, month time.Time, amount decimal.Decimal) error {
	const op = "BillingService.Complete"

	rec, err := st.Billing.FindPendingBucketForUpdate(ctx, recordType, ownerID, month)
	switch {
	case err == nil:
		rec.AmountDue = rec.AmountDue.Add(amount)
		if err := st.Billing.Save(ctx, rec); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to update billing record", err)
		}
		return nil
	case errors.Is(err, utils.ErrNotFound):
		rec = &models.BillingRecord{
			RecordType:   recordType,
			Status:       models.BillingPending,
			AmountDue:    amount,
			BillingMonth: month,
			DueDate:      month.AddDate(0, 1, dueDayOfNextMonth),
		}
		switch recordType {
		case models.RecordClientBilling:
			rec.ClientOrgID = &ownerID
		case models.RecordInterviewerPayment:
			rec.InterviewerID = &ownerID
		}
		if err := st.Billing.Create(ctx, rec); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to create billing record", err)
		}
		return nil
	default:
		return utils.E(utils.CodeInternal, op, "billing bucket lookup failed", err)
	}
}

func (s *billingService) List(ctx context.Context, recordType string, month time.Time) ([]models.BillingRecord, error) {
	const op = "BillingService.List"

	recs, err := s.tx.Store().Billing.List(ctx, recordType, month)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list billing records", err)
	}
	return recs, nil
}

func (s *billingService) opsAlert(ctx context.Context, interviewID uint, cause error) {
	if s.alerts == nil {
		return
	}
	err := s.alerts.Enqueue(ctx, queue.StreamOpsAlerts, queue.Message{
		Kind:    queue.KindOpsAlert,
		Subject: "billing completion blocked",
		Data: map[string]any{
			"interview_id": interviewID,
			"reason":       cause.Error(),
		},
	})
	if err != nil {
		s.logger.WithError(err).WithField("interview_id", interviewID).Warn("failed to enqueue ops alert")
	}
}

// monthOf truncates to the first calendar day of t's month.
func monthOf(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
