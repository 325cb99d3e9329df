package identity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStaff   Role = "staff"
	RolePatient Role = "patient"
)

// Caller is the authenticated identity carried by a verified bearer token.
type Caller struct {
	ID   uuid.UUID
	Role Role
	Name string
}

func (c Caller) IsStaff() bool {
	return c.Role == RoleStaff
}

// Principal is a login identity. ID and Role never change after creation.
type Principal struct {
	ID               uuid.UUID
	Role             Role
	Name             string
	Email            string
	Identifier       string
	PasswordHash     string
	ClinicalRecordID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ClinicalRecord is the clinical-side patient record. It shares the natural
// key Identifier with the Principal of the same person.
type ClinicalRecord struct {
	ID         uuid.UUID
	Name       string
	Identifier string
	Phone      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	placeholderPhone   = "pending update"
	placeholderAddress = "pending update"
)
