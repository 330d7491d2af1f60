package models

import (
	"time"

	"github.com/lib/pq"
)

// Candidate interview-process statuses. Interviews reuse the same vocabulary.
const (
	StatusNotScheduled         = "NSCH"
	StatusScheduled            = "SCH"
	StatusHighlyRecommended    = "HREC"
	StatusRecommended          = "REC"
	StatusNotRecommended       = "NREC"
	StatusStronglyNotRecommend = "SNREC"
	StatusNotJoined            = "NJ"
)

// FinalStatuses are the terminal labels a submitted feedback may carry.
var FinalStatuses = map[string]bool{
	StatusHighlyRecommended:    true,
	StatusRecommended:          true,
	StatusNotRecommended:       true,
	StatusStronglyNotRecommend: true,
	StatusNotJoined:            true,
}

type Candidate struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ClientOrgID uint `gorm:"index" json:"client_org_id"`

	Name        string `gorm:"type:text" json:"name"`
	Email       string `gorm:"type:text" json:"email"`
	PhoneNumber string `gorm:"type:text" json:"phone_number"`
	Designation string `gorm:"type:text" json:"designation"`
	Company     string `gorm:"type:text" json:"company"`

	ExperienceYears  int `json:"experience_years"`
	ExperienceMonths int `json:"experience_months"`

	Skills pq.StringArray `gorm:"type:text[]" json:"skills"`

	Status     string `gorm:"type:text;default:NSCH;index" json:"status"`
	Score      int    `gorm:"default:0" json:"score"`
	TotalScore int    `gorm:"default:0" json:"total_score"`

	// Cooldown gate: set when a booking fan-out is dispatched; a second
	// dispatch within an hour is rejected.
	LastScheduledInitiateAt *time.Time `gorm:"column:last_scheduled_initiate_at" json:"last_scheduled_initiate_at,omitempty"`

	DropReason string `gorm:"type:text" json:"drop_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (Candidate) TableName() string { return "candidates" }
