package favorites

import (
	"time"

	"oportunidades/internal/engine/opportunities"
)

type Favorite struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"usuario_id"`
	OpportunityID int64     `json:"oportunidade_id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Opportunity *opportunities.Opportunity `json:"Oportunidade,omitempty"`
}

// Added acknowledges a new favorite.
type Added struct {
	Message  string    `json:"mensagem"`
	Favorite *Favorite `json:"favorito"`
}

type Status struct {
	IsFavorite bool `json:"isFavorito"`
}
