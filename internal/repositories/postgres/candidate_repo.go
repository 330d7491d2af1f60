package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidateRepository interface {
	Create(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id uint) (*models.Candidate, error)
	// GetByIDForUpdate locks the candidate row; dispatch and confirmation are
	// linearized per candidate on this lock.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Candidate, error)
	Save(ctx context.Context, c *models.Candidate) error
	Archive(ctx context.Context, id uint, reason string) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Create(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND archived = false", id).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) Save(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *candidateRepo) Archive(ctx context.Context, id uint, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ? AND archived = false", id).
		Updates(map[string]any{"archived": true, "drop_reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
