package inscriptions

import (
	"time"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/platform/models"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// transitions lists the statuses an organization may move an inscription to.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted, StatusRejected},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Inscription struct {
	ID            int64     `json:"id"`
	Status        string    `json:"status"`
	Notes         *string   `json:"observacoes"`
	AccountID     int64     `json:"usuario_id"`
	OpportunityID int64     `json:"oportunidade_id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Opportunity *opportunities.Opportunity `json:"Oportunidade,omitempty"`
	Account     *models.Account            `json:"Usuario,omitempty"`
}

type ApplyInput struct {
	Notes *string `json:"observacoes"`
}

type StatusInput struct {
	Status string `json:"status"`
}
