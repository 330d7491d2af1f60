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

type EngagementRepository interface {
	CreateEngagement(ctx context.Context, eng *models.Engagement) error
	GetEngagement(ctx context.Context, id uint) (*models.Engagement, error)
	TemplateExists(ctx context.Context, clientOrgID, templateID uint) (bool, error)
	GetTemplate(ctx context.Context, id uint) (*models.EngagementTemplate, error)
	ListOperations(ctx context.Context, engagementID uint) ([]models.EngagementOperation, error)
	GetOperationForUpdate(ctx context.Context, id uint) (*models.EngagementOperation, error)
	CreateOperations(ctx context.Context, ops []*models.EngagementOperation) error
	SaveOperation(ctx context.Context, op *models.EngagementOperation) error
	// FetchDueOperations claims up to limit pending operations whose
	// next_run_at has passed, skipping rows locked by concurrent pollers.
	FetchDueOperations(ctx context.Context, now time.Time, limit int) ([]models.EngagementOperation, error)
}

type engagementRepo struct {
	db *gorm.DB
}

func NewEngagementRepo(db *gorm.DB) EngagementRepository {
	return &engagementRepo{db: db}
}

func (r *engagementRepo) CreateEngagement(ctx context.Context, eng *models.Engagement) error {
	return r.db.WithContext(ctx).Create(eng).Error
}

func (r *engagementRepo) GetEngagement(ctx context.Context, id uint) (*models.Engagement, error) {
	var eng models.Engagement
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&eng).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &eng, err
}

func (r *engagementRepo) TemplateExists(ctx context.Context, clientOrgID, templateID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EngagementTemplate{}).
		Where("id = ? AND client_org_id = ? AND archived = false", templateID, clientOrgID).
		Count(&count).Error
	return count > 0, err
}

func (r *engagementRepo) GetTemplate(ctx context.Context, id uint) (*models.EngagementTemplate, error) {
	var tpl models.EngagementTemplate
	err := r.db.WithContext(ctx).
		Where("id = ? AND archived = false", id).
		Take(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &tpl, err
}

func (r *engagementRepo) ListOperations(ctx context.Context, engagementID uint) ([]models.EngagementOperation, error) {
	var ops []models.EngagementOperation
	err := r.db.WithContext(ctx).
		Where("engagement_id = ? AND archived = false AND delivery_status <> ?", engagementID, models.DeliveryCancelled).
		Order("week, deliver_at").
		Find(&ops).Error
	return ops, err
}

func (r *engagementRepo) GetOperationForUpdate(ctx context.Context, id uint) (*models.EngagementOperation, error) {
	var op models.EngagementOperation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND archived = false", id).
		Take(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &op, err
}

func (r *engagementRepo) CreateOperations(ctx context.Context, ops []*models.EngagementOperation) error {
	return r.db.WithContext(ctx).Create(ops).Error
}

func (r *engagementRepo) SaveOperation(ctx context.Context, op *models.EngagementOperation) error {
	return r.db.WithContext(ctx).Save(op).Error
}

func (r *engagementRepo) FetchDueOperations(ctx context.Context, now time.Time, limit int) ([]models.EngagementOperation, error) {
	var ops []models.EngagementOperation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("delivery_status = ? AND next_run_at <= ? AND archived = false", models.DeliveryPending, now).
		Order("next_run_at").
		Limit(limit).
		Find(&ops).Error
	return ops, err
}
