package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RateScopeClient      = "client"
	RateScopeInterviewer = "interviewer"
)

// Experience brackets used for flat-rate lookup.
var ExperienceBrackets = []string{"0-4", "4-6", "6-8", "8-10", "10+"}

// RateCard maps an experience bracket to a flat monetary rate. Client-scoped
// rows are per client org (what the client is billed); interviewer-scoped
// rows apply pool-wide (what the interviewer is paid).
type RateCard struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Scope       string `gorm:"type:text;index:idx_rate_lookup" json:"scope"`
	ClientOrgID *uint  `gorm:"index:idx_rate_lookup" json:"client_org_id,omitempty"`

	ExperienceBracket string          `gorm:"type:text;index:idx_rate_lookup" json:"experience_bracket"`
	Rate              decimal.Decimal `gorm:"type:numeric(10,2)" json:"rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (RateCard) TableName() string { return "rate_cards" }
