package postgres

import (
	"context"
	"errors"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RateRepository interface {
	ClientRate(ctx context.Context, clientOrgID uint, bracket string) (decimal.Decimal, error)
	InterviewerRate(ctx context.Context, bracket string) (decimal.Decimal, error)
}

type rateRepo struct {
	db *gorm.DB
}

func NewRateRepo(db *gorm.DB) RateRepository {
	return &rateRepo{db: db}
}

func (r *rateRepo) ClientRate(ctx context.Context, clientOrgID uint, bracket string) (decimal.Decimal, error) {
	var card models.RateCard
	err := r.db.WithContext(ctx).
		Where("scope = ? AND client_org_id = ? AND experience_bracket = ? AND archived = false",
			models.RateScopeClient, clientOrgID, bracket).
		Take(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, utils.ErrNotFound
	}
	return card.Rate, err
}

func (r *rateRepo) InterviewerRate(ctx context.Context, bracket string) (decimal.Decimal, error) {
	var card models.RateCard
	err := r.db.WithContext(ctx).
		Where("scope = ? AND experience_bracket = ? AND archived = false",
			models.RateScopeInterviewer, bracket).
		Take(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, utils.ErrNotFound
	}
	return card.Rate, err
}
