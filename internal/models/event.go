package models

import (
	"time"

	"gorm.io/gorm"
)

type EventMode string

const (
	ModeInPerson EventMode = "In-Person"
	ModeOnline   EventMode = "Online"
	ModeHybrid   EventMode = "Hybrid"
)

type EventStatus string

const (
	StatusDraft           EventStatus = "Draft"
	StatusPendingApproval EventStatus = "Pending Approval"
	StatusApproved        EventStatus = "Approved"
	StatusRejected        EventStatus = "Rejected"
	StatusCompleted       EventStatus = "Completed"
)

type EntryFee string

const (
	FeeFree EntryFee = "Free"
	FeePaid EntryFee = "Paid"
)

// Event is the central record of the lifecycle engine. Timestamps are UTC.
// Location is empty until the reviewing staff member assigns one on approval.
// Fee and budget amounts are stored as cents.
type Event struct {
	gorm.Model
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	Mode            EventMode   `json:"mode"`
	Location        string      `json:"location"`
	StreamURL       string      `json:"stream_url"`
	OrganizerID     uint        `json:"organizer_id"`
	Organizer       User        `json:"-" gorm:"foreignKey:OrganizerID"`
	Status          EventStatus `json:"status"`
	RejectionReason string      `json:"rejection_reason"`
	MaxSeats        *uint       `json:"max_seats"`
	EntryFee        EntryFee    `json:"entry_fee"`
	FeeAmountCents  *int64      `json:"fee_amount_cents"`
	BudgetCents     *int64      `json:"budget_cents"`
}

// BeforeSave runs the full invariant set on every create and update. Persist
// paths cannot bypass it; a failing check aborts the write with FieldErrors.
func (e *Event) BeforeSave(tx *gorm.DB) error {
	return e.validate(tx.Session(&gorm.Session{NewDB: true}), e.ID == 0, time.Now().UTC())
}

func (e *Event) validate(db *gorm.DB, isNew bool, now time.Time) error {
	var errs FieldErrors

	if !e.StartTime.Before(e.EndTime) {
		errs = append(errs, FieldError{"end_time", "End time must be after the start time."})
	}
	if isNew && e.StartTime.Before(now) {
		errs = append(errs, FieldError{"start_time", "The start time must be in the future."})
	}
	if e.EndTime.After(now.Add(365 * 24 * time.Hour)) {
		errs = append(errs, FieldError{"end_time", "The end date cannot be more than one year from now."})
	}
	if (e.Mode == ModeOnline || e.Mode == ModeHybrid) && e.StreamURL == "" {
		errs = append(errs, FieldError{"stream_url", "A stream URL is required for Online or Hybrid events."})
	}
	if e.EntryFee == FeePaid && (e.FeeAmountCents == nil || *e.FeeAmountCents <= 0) {
		errs = append(errs, FieldError{"fee_amount", "A fee amount is required for paid events."})
	}
	if e.EntryFee == FeeFree && e.FeeAmountCents != nil {
		// Normalizing mutation, not a failure.
		e.FeeAmountCents = nil
	}
	if e.Status == StatusCompleted && e.EndTime.After(now) {
		errs = append(errs, FieldError{"status", "An event cannot be marked as Completed before its end time has passed."})
	}
	if e.Location != "" && e.StartTime.Before(e.EndTime) {
		conflict, err := HasLocationConflict(db, e.Location, e.StartTime, e.EndTime, e.ID)
		if err != nil {
			return err
		}
		if conflict {
			errs = append(errs, FieldError{"location", "This location is already booked for an overlapping time period."})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HasLocationConflict reports whether any Approved event other than
// excludeID occupies location during any part of [start, end). The interval
// is half-open, so back-to-back bookings do not conflict.
func HasLocationConflict(db *gorm.DB, location string, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&Event{}).
		Where("location = ? AND status = ? AND start_time < ? AND end_time > ? AND id <> ?",
			location, StatusApproved, end, start, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsFull reports whether the event has reached its seat limit. A nil
// MaxSeats means unlimited seating.
func (e *Event) IsFull(db *gorm.DB) (bool, error) {
	if e.MaxSeats == nil || *e.MaxSeats == 0 {
		return false, nil
	}
	var count int64
	if err := db.Model(&Registration{}).Where("event_id = ?", e.ID).Count(&count).Error; err != nil {
		return false, err
	}
	return count >= int64(*e.MaxSeats), nil
}
