package models

import "time"

const (
	DeliveryPending   = "PND"
	DeliverySucceeded = "SUC"
	DeliveryCancelled = "CAN"
	DeliveryFailed    = "FLD"
)

// Engagement is a post-offer nurture campaign for one candidate.
type Engagement struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ClientOrgID uint `gorm:"index" json:"client_org_id"`

	CandidateName  string `gorm:"type:text" json:"candidate_name"`
	CandidateEmail string `gorm:"type:text" json:"candidate_email"`

	NoticePeriodDays int `json:"notice_period_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (Engagement) TableName() string { return "engagements" }

type EngagementTemplate struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientOrgID uint   `gorm:"index" json:"client_org_id"`
	Name        string `gorm:"type:text" json:"name"`
	Subject     string `gorm:"type:text" json:"subject"`
	Body        string `gorm:"type:text" json:"body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (EngagementTemplate) TableName() string { return "engagement_templates" }

// EngagementOperation is one scheduled future delivery. TaskID is the
// revocable handle: rescheduling issues a new handle before the new schedule
// takes effect. Delivered operations are immutable.
type EngagementOperation struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	EngagementID uint `gorm:"index" json:"engagement_id"`
	TemplateID   uint `gorm:"index" json:"template_id"`

	Week      int       `json:"week"` // campaign-week bucket, 1-based
	DeliverAt time.Time `json:"deliver_at"`

	TaskID         string `gorm:"type:uuid;uniqueIndex" json:"task_id"`
	DeliveryStatus string `gorm:"type:text;default:PND;index" json:"delivery_status"`

	Attempts  int       `gorm:"default:0" json:"attempts"`
	NextRunAt time.Time `gorm:"index" json:"next_run_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (EngagementOperation) TableName() string { return "engagement_operations" }
