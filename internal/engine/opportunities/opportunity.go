package opportunities

import (
	"time"

	"oportunidades/internal/pkg/optional"
	"oportunidades/internal/platform/models"
)

const (
	DefaultVacancies       = 1
	DefaultMaxParticipants = 50
)

type Opportunity struct {
	ID               int64     `json:"id"`
	Title            string    `json:"titulo"`
	Description      string    `json:"descricao"`
	Location         string    `json:"localizacao"`
	Area             string    `json:"area"`
	Vacancies        int       `json:"vagas"`
	StartDate        *string   `json:"data_inicio"`     // YYYY-MM-DD
	EndDate          *string   `json:"data_fim"`        // YYYY-MM-DD
	Deadline         *string   `json:"prazo_inscricao"` // YYYY-MM-DD
	MaxParticipants  int       `json:"max_participantes"`
	RequiresApproval bool      `json:"requires_approval"`
	Link             *string   `json:"link"`
	IsActive         bool      `json:"is_active"`
	Image            *string   `json:"imagem"`
	OrganizationID   int64     `json:"organizacao_id"`
	CategoryID       *int64    `json:"categoria_id"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Organization *models.Organization `json:"Organizacao,omitempty"`
	Category     *models.Category     `json:"Categoria,omitempty"`
}

// Input carries create and update payloads. On create, omitted fields take
// their defaults; on update, omitted fields are left as they are and null
// clears optional ones.
type Input struct {
	Title            optional.Value[string] `json:"titulo"`
	Description      optional.Value[string] `json:"descricao"`
	Location         optional.Value[string] `json:"localizacao"`
	Area             optional.Value[string] `json:"area"`
	Vacancies        optional.Value[int]    `json:"vagas"`
	StartDate        optional.Value[string] `json:"data_inicio"`
	EndDate          optional.Value[string] `json:"data_fim"`
	Deadline         optional.Value[string] `json:"prazo_inscricao"`
	MaxParticipants  optional.Value[int]    `json:"max_participantes"`
	RequiresApproval optional.Value[bool]   `json:"requires_approval"`
	Link             optional.Value[string] `json:"link"`
	Image            optional.Value[string] `json:"imagem"`
	CategoryID       optional.Value[int64]  `json:"categoria_id"`
}

// Sort fields accepted by List.
var sortColumns = map[string]string{
	"createdAt":       "o.created_at",
	"titulo":          "o.titulo",
	"prazo_inscricao": "o.prazo_inscricao",
	"vagas":           "o.vagas",
}

type Filter struct {
	Term       string
	Area       string
	Location   string
	CategoryID *int64
	Sort       string // key of sortColumns, default createdAt
	Direction  string // asc or desc, default desc
	Limit      int
	Offset     int
}

type Page struct {
	Items  []*Opportunity `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Deactivation acknowledges a soft delete.
type Deactivation struct {
	Message string `json:"mensagem"`
	ID      int64  `json:"id"`
}
