package services

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

// IdentityService maps authenticated JWT subjects onto domain parties.
type IdentityService interface {
	InterviewerByUser(ctx context.Context, userID string) (*models.Interviewer, error)
	ContactByUser(ctx context.Context, userID string) (*models.ClientContact, error)
}

type identityService struct {
	tx postgres.TxRunner
}

func NewIdentityService(tx postgres.TxRunner) IdentityService {
	return &identityService{tx: tx}
}

func (s *identityService) InterviewerByUser(ctx context.Context, userID string) (*models.Interviewer, error) {
	const op = "IdentityService.InterviewerByUser"

	iv, err := s.tx.Store().Interviewers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeForbidden, op, "no interviewer profile for this account", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "interviewer lookup failed", err)
	}
	return iv, nil
}

func (s *identityService) ContactByUser(ctx context.Context, userID string) (*models.ClientContact, error) {
	const op = "IdentityService.ContactByUser"

	ct, err := s.tx.Store().Contacts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeForbidden, op, "no client contact profile for this account", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "contact lookup failed", err)
	}
	return ct, nil
}
