package models

import (
	"time"

	"gorm.io/datatypes"
)

// InterviewFeedback is one-to-one with Interview. Draft saves are allowed
// repeatedly; once IsSubmitted is set the result is final.
type InterviewFeedback struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	InterviewID uint `gorm:"uniqueIndex" json:"interview_id"`

	// Per-skill evaluation, e.g. [{"skill":"Go","rating":4,"comment":"..."}]
	SkillEvaluations datatypes.JSON `gorm:"type:jsonb" json:"skill_evaluations"`

	OverallRemark string `gorm:"type:text" json:"overall_remark"` // HREC|REC|NREC|SNREC|NJ
	OverallScore  int    `gorm:"default:0" json:"overall_score"`  // 0-100

	IsSubmitted bool `gorm:"default:false" json:"is_submitted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (InterviewFeedback) TableName() string { return "interview_feedbacks" }
