package models

import (
	"time"

	"github.com/gosimple/slug"
)

const (
	RoleStudent      = "student"
	RoleOrganization = "organization"
	RoleAdmin        = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Organization *Organization `json:"Organizacao,omitempty"`
}

type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nome"`
	Slug        string    `json:"slug"`
	Description *string   `json:"descricao"`
	Website     *string   `json:"website"`
	Phone       *string   `json:"telefone"`
	Address     *string   `json:"endereco"`
	AccountID   int64     `json:"usuario_id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Account *Account `json:"Usuario,omitempty"`
}

// SetName updates the name and the slug derived from it.
func (o *Organization) SetName(name string) {
	o.Name = name
	o.Slug = slug.Make(name)
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nome"`
	Description *string   `json:"descricao"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
