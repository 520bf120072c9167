package models

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is one attendee's post-event rating. At most one row may exist
// per (event, user); the composite unique index backs that up at the store.
type Feedback struct {
	gorm.Model
	EventID     uint      `json:"event_id" gorm:"uniqueIndex:idx_event_user"`
	Event       Event     `json:"-"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex:idx_event_user"`
	User        User      `json:"-"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (f *Feedback) BeforeSave(tx *gorm.DB) error {
	if f.Rating < 1 || f.Rating > 5 {
		return FieldErrors{{Field: "rating", Message: "Rating must be between 1 and 5."}}
	}
	return nil
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	return nil
}
