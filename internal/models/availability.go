package models

import "time"

// InterviewerAvailability is one contiguous open block. Booking reserves a
// sub-range and may spawn sibling rows for the unbooked remainders; rows are
// archived, never deleted.
type InterviewerAvailability struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	InterviewerID uint `gorm:"index:idx_availability_day" json:"interviewer_id"`

	Date      time.Time `gorm:"type:date;index:idx_availability_day" json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	BookedByID  *uint      `gorm:"index" json:"booked_by_id,omitempty"` // candidate id
	BookedStart *time.Time `json:"booked_start,omitempty"`
	BookedEnd   *time.Time `json:"booked_end,omitempty"`
	IsScheduled bool       `gorm:"default:false" json:"is_scheduled"`

	Notes            string `gorm:"type:text" json:"notes,omitempty"`
	CalendarEventRef string `gorm:"type:text" json:"calendar_event_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `gorm:"default:false" json:"archived"`
}

func (InterviewerAvailability) TableName() string { return "interviewer_availabilities" }

// Open reports whether the slot can still be offered.
func (a *InterviewerAvailability) Open() bool {
	return a != nil && !a.Archived && a.BookedByID == nil && !a.IsScheduled
}
