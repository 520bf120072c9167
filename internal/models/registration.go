package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration links an attendee to an event. TicketCode is the payload
// encoded in the attendee's QR ticket and is what check-in stations scan.
// FeedbackRequestSentAt is the idempotency guard for the feedback
// dispatcher: nil means no request has been sent yet.
type Registration struct {
	gorm.Model
	EventID               uint       `json:"event_id" gorm:"uniqueIndex:idx_event_attendee"`
	Event                 Event      `json:"-"`
	AttendeeID            uint       `json:"attendee_id" gorm:"uniqueIndex:idx_event_attendee"`
	Attendee              User       `json:"-" gorm:"foreignKey:AttendeeID"`
	TicketCode            string     `json:"ticket_code" gorm:"uniqueIndex"`
	RegisteredAt          time.Time  `json:"registered_at"`
	Paid                  bool       `json:"paid"`
	Attended              bool       `json:"attended"`
	AttendedAt            *time.Time `json:"attended_at"`
	FeedbackRequestSentAt *time.Time `json:"feedback_request_sent_at"`
}

func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.TicketCode == "" {
		r.TicketCode = uuid.NewString()
	}
	if r.RegisteredAt.IsZero() {
		r.RegisteredAt = time.Now().UTC()
	}
	return nil
}

// HasSubmittedFeedback reports whether the attendee already left feedback
// for this registration's event.
func (r *Registration) HasSubmittedFeedback(db *gorm.DB) (bool, error) {
	var count int64
	err := db.Model(&Feedback{}).
		Where("event_id = ? AND user_id = ?", r.EventID, r.AttendeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
