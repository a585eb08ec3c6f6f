package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Supervisor is the recipient/approver of a completed inspection report.
// Supervisors are selected during the wizard, never created there; the
// natural key for create-or-get is the email address.
type SupervisorRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Department string             `bson:"department" json:"department"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Supervisor is the wizard-facing supervisor choice.
type Supervisor struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Valid reports whether the choice can receive a report.
func (s Supervisor) Valid() bool {
	return s.Name != "" && s.Email != ""
}

// Selection converts a persisted supervisor into a wizard choice.
func (s SupervisorRecord) Selection() Supervisor {
	return Supervisor{
		ID:         s.ID.Hex(),
		Name:       s.Name,
		Email:      s.Email,
		Department: s.Department,
	}
}
