package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/client"
)

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	Company   *string   `json:"company"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Company:   c.Company,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toResponseList(cs []*client.Client) []clientResponse {
	resp := make([]clientResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}
