package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RecordClientBilling      = "CLB"
	RecordInterviewerPayment = "INP"
)

const (
	BillingPending    = "PED"
	BillingPaid       = "PAI"
	BillingOverdue    = "OVD"
	BillingCancelled  = "CAN"
	BillingFailed     = "FLD"
	BillingInProgress = "INPR"
)

// BillingRecord is a monthly bucket. At most one pending record may exist per
// (client, billing_month) and per (interviewer, billing_month); amounts are
// accumulated into the bucket rather than creating parallel rows. Enforced in
// the aggregator under row locks, with partial unique indexes as backstop.
type BillingRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RecordType string `gorm:"type:text;index:idx_billing_type_status" json:"record_type"`
	Status     string `gorm:"type:text;default:PED;index:idx_billing_type_status" json:"status"`

	AmountDue decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount_due"`

	// First calendar day of the month; the bucket key.
	BillingMonth time.Time `gorm:"type:date;index" json:"billing_month"`
	DueDate      time.Time `gorm:"type:date" json:"due_date"`
	PaymentDate  *time.Time `json:"payment_date,omitempty"`

	InvoiceNumber *string `gorm:"type:text;uniqueIndex" json:"invoice_number,omitempty"`

	// Exactly one populated, determined by RecordType.
	ClientOrgID   *uint `gorm:"index" json:"client_org_id,omitempty"`
	InterviewerID *uint `gorm:"index" json:"interviewer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (BillingRecord) TableName() string { return "billing_records" }
