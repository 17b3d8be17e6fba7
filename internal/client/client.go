package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer that invoices are billed to.
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Address   *string
	Company   *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
