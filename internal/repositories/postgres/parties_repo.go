package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"gorm.io/gorm"
)

type InterviewerRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Interviewer, error)
	// GetByUserID resolves an interviewer from a JWT subject.
	GetByUserID(ctx context.Context, userID string) (*models.Interviewer, error)
}

type ContactRepository interface {
	// GetByUserID resolves a client contact from a JWT subject.
	GetByUserID(ctx context.Context, userID string) (*models.ClientContact, error)
}

type interviewerRepo struct {
	db *gorm.DB
}

func NewInterviewerRepo(db *gorm.DB) InterviewerRepository {
	return &interviewerRepo{db: db}
}

func (r *interviewerRepo) GetByID(ctx context.Context, id uint) (*models.Interviewer, error) {
	var iv models.Interviewer
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewerRepo) GetByUserID(ctx context.Context, userID string) (*models.Interviewer, error) {
	var iv models.Interviewer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND archived = false", userID).
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) GetByUserID(ctx context.Context, userID string) (*models.ClientContact, error) {
	var c models.ClientContact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND archived = false", userID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}
