package models

import (
	"gorm.io/gorm"
)

const (
	RoleOrganizer   = "Organizer"
	RoleParticipant = "Participant"
)

// User is an account holder. IsStaff marks the reviewing authority (HOD)
// who approves or rejects submitted events.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex"`
	Email        string
	PasswordHash string
	Role         string
	IsStaff      bool
}
