package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/sirupsen/logrus"
)

// maxOperationsPerWeek caps nurture mails within one campaign week; the
// campaign-wide cap is two per week of the candidate's notice period.
const maxOperationsPerWeek = 2

type CreateEngagementInput struct {
	ClientOrgID      uint   `json:"client_org_id"`
	CandidateName    string `json:"candidate_name"`
	CandidateEmail   string `json:"candidate_email"`
	NoticePeriodDays int    `json:"notice_period_days"`
}

type OperationInput struct {
	TemplateID uint      `json:"template_id"`
	Week       int       `json:"week"`
	DeliverAt  time.Time `json:"deliver_at"`
}

type EngagementService interface {
	CreateEngagement(ctx context.Context, in CreateEngagementInput) (*models.Engagement, error)
	// ScheduleOperations plans future deliveries against the campaign quota.
	// The whole batch is accepted or rejected as one.
	ScheduleOperations(ctx context.Context, engagementID uint, ins []OperationInput) ([]*models.EngagementOperation, error)
	// Reschedule moves a pending or failed delivery. The old task handle is
	// retired and a fresh one issued, so a poller holding the stale handle
	// delivers nothing.
	Reschedule(ctx context.Context, operationID uint, deliverAt time.Time) (*models.EngagementOperation, error)
	CancelOperation(ctx context.Context, operationID uint) error
	ListOperations(ctx context.Context, engagementID uint) ([]models.EngagementOperation, error)
}

type engagementService struct {
	tx     postgres.TxRunner
	logger *logrus.Logger
}

func NewEngagementService(tx postgres.TxRunner, logger *logrus.Logger) EngagementService {
	return &engagementService{tx: tx, logger: logger}
}

func (s *engagementService) CreateEngagement(ctx context.Context, in CreateEngagementInput) (*models.Engagement, error) {
	const op = "EngagementService.CreateEngagement"

	if in.CandidateEmail == "" || in.CandidateName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate name and email are required", nil)
	}
	if in.NoticePeriodDays <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "notice period must be positive", nil)
	}

	eng := &models.Engagement{
		ClientOrgID:      in.ClientOrgID,
		CandidateName:    in.CandidateName,
		CandidateEmail:   in.CandidateEmail,
		NoticePeriodDays: in.NoticePeriodDays,
	}
	if err := s.tx.Store().Engagements.CreateEngagement(ctx, eng); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create engagement", err)
	}
	return eng, nil
}

func (s *engagementService) ScheduleOperations(ctx context.Context, engagementID uint, ins []OperationInput) ([]*models.EngagementOperation, error) {
	const op = "EngagementService.ScheduleOperations"

	if len(ins) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one operation is required", nil)
	}

	var ops []*models.EngagementOperation
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		eng, err := st.Engagements.GetEngagement(ctx, engagementID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "engagement not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load engagement", err)
		}

		noticeWeeks := (eng.NoticePeriodDays + 6) / 7
		totalQuota := maxOperationsPerWeek * noticeWeeks

		existing, err := st.Engagements.ListOperations(ctx, engagementID)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to load scheduled operations", err)
		}

		perWeek := make(map[int]int)
		for _, cur := range existing {
			perWeek[cur.Week]++
		}
		total := len(existing)

		now := time.Now()
		for _, in := range ins {
			if in.Week < 1 || in.Week > noticeWeeks {
				return utils.E(utils.CodeInvalidArgument, op,
					fmt.Sprintf("week must be between 1 and %d", noticeWeeks), nil)
			}
			if !in.DeliverAt.After(now) {
				return utils.E(utils.CodeInvalidArgument, op, "delivery time must be in the future", nil)
			}

			ok, err := st.Engagements.TemplateExists(ctx, eng.ClientOrgID, in.TemplateID)
			if err != nil {
				return utils.E(utils.CodeInternal, op, "template lookup failed", err)
			}
			if !ok {
				return utils.E(utils.CodeInvalidArgument, op,
					fmt.Sprintf("template %d does not belong to this client", in.TemplateID), nil)
			}

			perWeek[in.Week]++
			if perWeek[in.Week] > maxOperationsPerWeek {
				return utils.E(utils.CodeConflict, op,
					fmt.Sprintf("week %d already has the maximum of %d deliveries", in.Week, maxOperationsPerWeek), nil)
			}
			total++
			if total > totalQuota {
				return utils.E(utils.CodeConflict, op,
					fmt.Sprintf("campaign quota of %d deliveries reached", totalQuota), nil)
			}

			ops = append(ops, &models.EngagementOperation{
				EngagementID:   engagementID,
				TemplateID:     in.TemplateID,
				Week:           in.Week,
				DeliverAt:      in.DeliverAt,
				TaskID:         uuid.NewString(),
				DeliveryStatus: models.DeliveryPending,
				NextRunAt:      in.DeliverAt,
			})
		}

		return st.Engagements.CreateOperations(ctx, ops)
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

func (s *engagementService) Reschedule(ctx context.Context, operationID uint, deliverAt time.Time) (*models.EngagementOperation, error) {
	const op = "EngagementService.Reschedule"

	if !deliverAt.After(time.Now()) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "delivery time must be in the future", nil)
	}

	var out *models.EngagementOperation
	err := s.tx.InTx(ctx, func(st *postgres.Store) error {
		cur, err := st.Engagements.GetOperationForUpdate(ctx, operationID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "operation not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load operation", err)
		}
		switch cur.DeliveryStatus {
		case models.DeliverySucceeded:
			return utils.E(utils.CodeConflict, op, "delivered operations cannot be rescheduled", nil)
		case models.DeliveryCancelled:
			return utils.E(utils.CodeConflict, op, "cancelled operations cannot be rescheduled", nil)
		}

		cur.TaskID = uuid.NewString()
		cur.DeliverAt = deliverAt
		cur.NextRunAt = deliverAt
		cur.DeliveryStatus = models.DeliveryPending
		cur.Attempts = 0
		if err := st.Engagements.SaveOperation(ctx, cur); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to reschedule operation", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *engagementService) CancelOperation(ctx context.Context, operationID uint) error {
	const op = "EngagementService.CancelOperation"

	return s.tx.InTx(ctx, func(st *postgres.Store) error {
		cur, err := st.Engagements.GetOperationForUpdate(ctx, operationID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeNotFound, op, "operation not found", err)
			}
			return utils.E(utils.CodeInternal, op, "failed to load operation", err)
		}
		if cur.DeliveryStatus == models.DeliverySucceeded {
			return utils.E(utils.CodeConflict, op, "delivered operations cannot be cancelled", nil)
		}
		if cur.DeliveryStatus == models.DeliveryCancelled {
			return nil
		}

		cur.DeliveryStatus = models.DeliveryCancelled
		if err := st.Engagements.SaveOperation(ctx, cur); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to cancel operation", err)
		}
		return nil
	})
}

func (s *engagementService) ListOperations(ctx context.Context, engagementID uint) ([]models.EngagementOperation, error) {
	const op = "EngagementService.ListOperations"

	ops, err := s.tx.Store().Engagements.ListOperations(ctx, engagementID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list operations", err)
	}
	return ops, nil
}
