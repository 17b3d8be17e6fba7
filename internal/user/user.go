package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a local account linked to an identity-provider subject.
type User struct {
	ID             uuid.UUID
	ExternalID     string
	Email          string
	FullName       *string
	HashedPassword string
	IsActive       bool
	IsSuperuser    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
