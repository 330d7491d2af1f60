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

type BillingRepository interface {
	// FindPendingBucketForUpdate locks the unique pending record for the
	// (owner, billing month) bucket. ownerID is a client org for CLB records
	// and an interviewer for INP records. utils.ErrNotFound when the bucket
	// does not exist yet.
	FindPendingBucketForUpdate(ctx context.Context, recordType string, ownerID uint, month time.Time) (*models.BillingRecord, error)
	Create(ctx context.Context, rec *models.BillingRecord) error
	Save(ctx context.Context, rec *models.BillingRecord) error
	List(ctx context.Context, recordType string, month time.Time) ([]models.BillingRecord, error)
}

type billingRepo struct {
	db *gorm.DB
}

func NewBillingRepo(db *gorm.DB) BillingRepository {
	return &billingRepo{db: db}
}

func (r *billingRepo) FindPendingBucketForUpdate(ctx context.Context, recordType string, ownerID uint, month time.Time) (*models.BillingRecord, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("record_type = ? AND status = ? AND billing_month = ? AND archived = false",
			recordType, models.BillingPending, month)

	switch recordType {
	case models.RecordClientBilling:
		q = q.Where("client_org_id = ?", ownerID)
	case models.RecordInterviewerPayment:
		q = q.Where("interviewer_id = ?", ownerID)
	}

	var rec models.BillingRecord
	err := q.Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}

func (r *billingRepo) Create(ctx context.Context, rec *models.BillingRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *billingRepo) Save(ctx context.Context, rec *models.BillingRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *billingRepo) List(ctx context.Context, recordType string, month time.Time) ([]models.BillingRecord, error) {
	q := r.db.WithContext(ctx).Where("archived = false")
	if recordType != "" {
		q = q.Where("record_type = ?", recordType)
	}
	if !month.IsZero() {
		q = q.Where("billing_month = ?", month)
	}

	var recs []models.BillingRecord
	err := q.Order("billing_month DESC, id").Find(&recs).Error
	return recs, err
}
