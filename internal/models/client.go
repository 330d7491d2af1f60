package models

import "time"

type ClientOrg struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:text" json:"name"`
	Domain   string `gorm:"type:text" json:"domain"`
	IsSigned bool   `gorm:"default:false" json:"is_signed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (ClientOrg) TableName() string { return "client_orgs" }

// ClientContact is a client-side operator; booking confirmations are
// copied to the contact that initiated the request.
type ClientContact struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientOrgID uint   `gorm:"index" json:"client_org_id"`
	UserID      string `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id"`
	Name        string `gorm:"type:text" json:"name"`
	Email       string `gorm:"type:text;uniqueIndex" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (ClientContact) TableName() string { return "client_contacts" }
