package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxRescheduleAttempts caps automatic reschedules of a single interview.
const MaxRescheduleAttempts = 3

type Interview struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	CandidateID   uint  `gorm:"index" json:"candidate_id"`
	InterviewerID *uint `gorm:"uniqueIndex:uniq_interviewer_schedule" json:"interviewer_id,omitempty"`

	Status      string    `gorm:"type:text;default:SCH" json:"status"`
	ScheduledAt time.Time `gorm:"uniqueIndex:uniq_interviewer_schedule" json:"scheduled_at"`

	// Reschedule chain: flat self-reference, history is a derived query.
	PreviousInterviewID *uint `json:"previous_interview_id,omitempty"`
	TimesProcessed      int   `gorm:"default:0" json:"times_processed"`

	// Computed once at creation from the rate catalog; recomputed by the
	// billing aggregator only when still zero.
	ClientAmount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"client_amount"`
	InterviewerAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"interviewer_amount"`

	IsBillingCompleted bool `gorm:"default:false" json:"is_billing_completed"`

	Score         int    `gorm:"default:0" json:"score"`
	TotalScore    int    `gorm:"default:0" json:"total_score"`
	OverallRemark string `gorm:"type:text" json:"overall_remark,omitempty"`

	CalendarEventRef string `gorm:"type:text" json:"calendar_event_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (Interview) TableName() string { return "interviews" }
