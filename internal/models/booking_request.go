package models

import "time"

const (
	RequestPending  = "PND"
	RequestAccepted = "ACC"
	RequestRejected = "REJ"
	RequestExpired  = "EXP"
)

// BookingRequest is the persisted unit of the fan-out protocol: one row per
// offered slot, carrying opaque accept/reject tokens. All confirmation
// validation reads and writes this row under a transaction; nothing is
// trusted from the link itself beyond the token lookup.
type BookingRequest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CandidateID   uint `gorm:"index" json:"candidate_id"`
	SlotID        uint `gorm:"index" json:"slot_id"`
	InterviewerID uint `gorm:"index" json:"interviewer_id"`

	// JWT subject of the client operator who dispatched the fan-out.
	RequestedBy string `gorm:"type:uuid" json:"requested_by"`

	ProposedStart time.Time `json:"proposed_start"`

	AcceptToken string `gorm:"type:uuid;uniqueIndex" json:"-"`
	RejectToken string `gorm:"type:uuid;uniqueIndex" json:"-"`

	Status    string    `gorm:"type:text;default:PND;index" json:"status"`
	ExpiresAt time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (BookingRequest) TableName() string { return "booking_requests" }
