package services

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

type CreateCandidateInput struct {
	ClientOrgID      uint     `json:"client_org_id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	PhoneNumber      string   `json:"phone_number"`
	Designation      string   `json:"designation"`
	Company          string   `json:"company"`
	ExperienceYears  int      `json:"experience_years"`
	ExperienceMonths int      `json:"experience_months"`
	Skills           []string `json:"skills"`
}

type CandidateService interface {
	Create(ctx context.Context, in CreateCandidateInput) (*models.Candidate, error)
	Get(ctx context.Context, id uint) (*models.Candidate, error)
	// Archive drops a candidate out of the pipeline with a recorded reason.
	Archive(ctx context.Context, id uint, reason string) error
}

type candidateService struct {
	tx postgres.TxRunner
}

func NewCandidateService(tx postgres.TxRunner) CandidateService {
	return &candidateService{tx: tx}
}

func (s *candidateService) Create(ctx context.Context, in CreateCandidateInput) (*models.Candidate, error) {
	const op = "CandidateService.Create"

	if in.Name == "" || in.Email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name and email are required", nil)
	}
	if in.ExperienceYears < 0 || in.ExperienceMonths < 0 || in.ExperienceMonths > 11 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid experience value", nil)
	}

	cand := &models.Candidate{
		ClientOrgID:      in.ClientOrgID,
		Name:             in.Name,
		Email:            in.Email,
		PhoneNumber:      in.PhoneNumber,
		Designation:      in.Designation,
		Company:          in.Company,
		ExperienceYears:  in.ExperienceYears,
		ExperienceMonths: in.ExperienceMonths,
		Skills:           in.Skills,
		Status:           models.StatusNotScheduled,
	}
	if err := s.tx.Store().Candidates.Create(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create candidate", err)
	}
	return cand, nil
}

func (s *candidateService) Get(ctx context.Context, id uint) (*models.Candidate, error) {
	const op = "CandidateService.Get"

	cand, err := s.tx.Store().Candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}
	return cand, nil
}

func (s *candidateService) Archive(ctx context.Context, id uint, reason string) error {
	const op = "CandidateService.Archive"

	if reason == "" {
		return utils.E(utils.CodeInvalidArgument, op, "a drop reason is required", nil)
	}

	err := s.tx.Store().Candidates.Archive(ctx, id, reason)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to archive candidate", err)
	}
	return nil
}
