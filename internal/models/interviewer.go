package models

import (
	"time"

	"gorm.io/datatypes"
)

type Interviewer struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      string `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id"`
	Name        string `gorm:"type:text" json:"name"`
	Email       string `gorm:"type:text;uniqueIndex" json:"email"`
	PhoneNumber string `gorm:"type:text" json:"phone_number"`

	CurrentCompany     string `gorm:"type:text" json:"current_company"`
	CurrentDesignation string `gorm:"type:text" json:"current_designation"`

	TotalExperienceYears  int `json:"total_experience_years"`
	TotalExperienceMonths int `json:"total_experience_months"`

	// JSONB, e.g. ["SDE II", "EM"] / ["Java", "Go"]
	AssignedRoles datatypes.JSON `gorm:"type:jsonb" json:"assigned_roles"`
	Skills        datatypes.JSON `gorm:"type:jsonb" json:"skills"`
	Strength      string         `gorm:"type:text" json:"strength"` // backend|frontend|devops|testing|aiml|data_engineer

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (Interviewer) TableName() string { return "interviewers" }
