package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRequestRepository interface {
	CreateBatch(ctx context.Context, reqs []*models.BookingRequest) error
	// FindByTokenForUpdate resolves either the accept or the reject token and
	// locks the row so a replayed token observes the settled status.
	FindByTokenForUpdate(ctx context.Context, token string) (*models.BookingRequest, error)
	Save(ctx context.Context, req *models.BookingRequest) error
}

type bookingRequestRepo struct {
	db *gorm.DB
}

func NewBookingRequestRepo(db *gorm.DB) BookingRequestRepository {
	return &bookingRequestRepo{db: db}
}

func (r *bookingRequestRepo) CreateBatch(ctx context.Context, reqs []*models.BookingRequest) error {
	return r.db.WithContext(ctx).Create(reqs).Error
}

func (r *bookingRequestRepo) FindByTokenForUpdate(ctx context.Context, token string) (*models.BookingRequest, error) {
	var req models.BookingRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("(accept_token = ? OR reject_token = ?) AND archived = false", token, token).
		Take(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &req, err
}

func (r *bookingRequestRepo) Save(ctx context.Context, req *models.BookingRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}
