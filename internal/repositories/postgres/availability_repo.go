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

type AvailabilityRepository interface {
	Create(ctx context.Context, slots ...*models.InterviewerAvailability) error
	GetByID(ctx context.Context, id uint) (*models.InterviewerAvailability, error)
	// GetByIDForUpdate locks the slot row; booking for one interviewer slot
	// is serialized on this lock.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.InterviewerAvailability, error)
	// HasOpenOverlap reports whether any open slot of the interviewer on the
	// given date intersects [start, end).
	HasOpenOverlap(ctx context.Context, interviewerID uint, date, start, end time.Time) (bool, error)
	ListForInterviewer(ctx context.Context, interviewerID uint) ([]models.InterviewerAvailability, error)
	Save(ctx context.Context, slot *models.InterviewerAvailability) error
}

type availabilityRepo struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) Create(ctx context.Context, slots ...*models.InterviewerAvailability) error {
	return r.db.WithContext(ctx).Create(slots).Error
}

func (r *availabilityRepo) GetByID(ctx context.Context, id uint) (*models.InterviewerAvailability, error) {
	var slot models.InterviewerAvailability
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &slot, err
}

func (r *availabilityRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.InterviewerAvailability, error) {
	var slot models.InterviewerAvailability
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND archived = false", id).
		Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &slot, err
}

func (r *availabilityRepo) HasOpenOverlap(ctx context.Context, interviewerID uint, date, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InterviewerAvailability{}).
		Where("interviewer_id = ? AND date = ? AND archived = false AND booked_by_id IS NULL", interviewerID, date).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *availabilityRepo) ListForInterviewer(ctx context.Context, interviewerID uint) ([]models.InterviewerAvailability, error) {
	var slots []models.InterviewerAvailability
	err := r.db.WithContext(ctx).
		Where("interviewer_id = ? AND archived = false", interviewerID).
		Order("date, start_time").
		Find(&slots).Error
	return slots, err
}

func (r *availabilityRepo) Save(ctx context.Context, slot *models.InterviewerAvailability) error {
	return r.db.WithContext(ctx).Save(slot).Error
}
