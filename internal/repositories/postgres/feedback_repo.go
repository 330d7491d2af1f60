package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	GetByInterviewID(ctx context.Context, interviewID uint) (*models.InterviewFeedback, error)
	Save(ctx context.Context, fb *models.InterviewFeedback) error
}

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) GetByInterviewID(ctx context.Context, interviewID uint) (*models.InterviewFeedback, error) {
	var fb models.InterviewFeedback
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND archived = false", interviewID).
		Take(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &fb, err
}

func (r *feedbackRepo) Save(ctx context.Context, fb *models.InterviewFeedback) error {
	return r.db.WithContext(ctx).Save(fb).Error
}
