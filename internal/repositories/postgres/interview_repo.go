package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewRepository interface {
	Create(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id uint) (*models.Interview, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Interview, error)
	// HasScheduledWithin reports whether the interviewer already has a
	// scheduled interview in the open window (from, to).
	HasScheduledWithin(ctx context.Context, interviewerID uint, from, to time.Time) (bool, error)
	// History walks the reschedule chain backwards from the given interview.
	History(ctx context.Context, id uint) ([]models.Interview, error)
	Save(ctx context.Context, iv *models.Interview) error
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Create(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id uint) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND archived = false", id).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) HasScheduledWithin(ctx context.Context, interviewerID uint, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("interviewer_id = ? AND status = ? AND archived = false", interviewerID, models.StatusScheduled).
		Where("scheduled_at > ? AND scheduled_at < ?", from, to).
		Count(&count).Error
	return count > 0, err
}

func (r *interviewRepo) History(ctx context.Context, id uint) ([]models.Interview, error) {
	var chain []models.Interview
	cur := id
	for {
		// Retired links in the chain are archived rows, so no archived
		// filter here.
		var iv models.Interview
		err := r.db.WithContext(ctx).Where("id = ?", cur).Take(&iv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(chain) > 0 {
				return chain, nil
			}
			return nil, utils.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, iv)
		if iv.PreviousInterviewID == nil {
			return chain, nil
		}
		cur = *iv.PreviousInterviewID
	}
}

func (r *interviewRepo) Save(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Save(iv).Error
}
