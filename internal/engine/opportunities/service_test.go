package opportunities

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/database/dbtest"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

type fixture struct {
	db       *sql.DB
	svc      *Service
	orgs     *organizations.Service
	accounts *repositories.AccountRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	orgs := organizations.NewService(repositories.NewOrganizationRepository(db))
	cfg := config.OpportunitiesConfig{DefaultImageURL: "https://img.example.com/default.png", DefaultPageSize: 20, MaxPageSize: 100}
	svc := NewService(NewRepository(db), orgs, repositories.NewCategoryRepository(db), cfg, "https://app.example.com/")
	return &fixture{db: db, svc: svc, orgs: orgs, accounts: repositories.NewAccountRepository(db)}
}

// orgActor registers an organization account. With withProfile its
// organization row exists and the actor carries its id.
func (f *fixture) orgActor(t *testing.T, name string, withProfile bool) *policy.Actor {
	t.Helper()
	ctx := context.Background()
	a := &models.Account{Name: name, Email: name + "@example.com", PasswordHash: "hash", Role: models.RoleOrganization}
	if err := f.accounts.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	actor := &policy.Actor{AccountID: a.ID, Role: a.Role, Name: a.Name}
	if withProfile {
		org, err := f.orgs.EnsureDefault(ctx, a.ID, a.Name, nil)
		if err != nil {
			t.Fatal(err)
		}
		actor.OrganizationID = &org.ID
	}
	return actor
}

func input(t *testing.T, body string) Input {
	t.Helper()
	var in Input
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("bad test input: %v", err)
	}
	return in
}

func TestCreate_DefaultsAndJoins(t *testing.T) {
	f := newFixture(t)
	actor := f.orgActor(t, "O", false)

	o, err := f.svc.Create(context.Background(), actor, input(t, `{
		"titulo": "Intro to X", "descricao": "Curso introdutório",
		"localizacao": "Remoto", "area": "Tecnologia", "vagas": 3
	}`))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !o.IsActive || o.Vacancies != 3 || o.MaxParticipants != DefaultMaxParticipants {
		t.Errorf("unexpected defaults: %+v", o)
	}
	if o.CategoryID != nil || o.Category != nil {
		t.Errorf("omitted category should stay empty, got %v", o.CategoryID)
	}
	if o.Image == nil || *o.Image != "https://img.example.com/default.png" {
		t.Errorf("image = %v, want configured default", o.Image)
	}
	if o.Organization == nil || o.Organization.Name != "Organização O" {
		t.Fatalf("organization not resolved: %+v", o.Organization)
	}
	if o.Organization.Account == nil || o.Organization.Account.ID != actor.AccountID {
		t.Errorf("organization account not joined: %+v", o.Organization.Account)
	}
	if o.Organization.Account.PasswordHash != "" {
		t.Error("joined account must not carry the password hash")
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	actor := f.orgActor(t, "O", true)
	ctx := context.Background()

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"descricao":"d","localizacao":"l","area":"a"}`},
		{"blank area", `{"titulo":"t","descricao":"d","localizacao":"l","area":"  "}`},
		{"zero vacancies", `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","vagas":0}`},
		{"bad date", `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","data_inicio":"01/02/2025"}`},
		{"end before start", `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","data_inicio":"2025-03-10","data_fim":"2025-03-01"}`},
		{"bad link", `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","link":"javascript:alert(1)"}`},
		{"unknown category", `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","categoria_id":999}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, actor, input(t, tt.body)); !errors.Is(err, errors.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreate_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := input(t, `{"titulo":"t","descricao":"d","localizacao":"l","area":"a"}`)

	if _, err := f.svc.Create(ctx, nil, body); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
	student := &policy.Actor{AccountID: 99, Role: models.RoleStudent}
	if _, err := f.svc.Create(ctx, student, body); !errors.Is(err, errors.ErrForbidden) {
		t.Errorf("student: expected ErrForbidden, got %v", err)
	}
}

func TestCreate_WithCategory(t *testing.T) {
	f := newFixture(t)
	actor := f.orgActor(t, "O", true)

	var catID int64
	f.db.QueryRow("SELECT id FROM categorias WHERE nome = 'Estágio'").Scan(&catID)

	o, err := f.svc.Create(context.Background(), actor, input(t, fmt.Sprintf(`{
		"titulo":"Estágio em dados","descricao":"d","localizacao":"Recife","area":"Dados","categoria_id":%d
	}`, catID)))
	if err != nil {
		t.Fatal(err)
	}
	if o.Category == nil || o.Category.Name != "Estágio" {
		t.Errorf("category not joined: %+v", o.Category)
	}
}

func TestUpdateAndDeactivate_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.orgActor(t, "O", true)
	other := f.orgActor(t, "P", true)
	noProfile := f.orgActor(t, "Q", false)

	o, err := f.svc.Create(ctx, owner, input(t, `{"titulo":"t","descricao":"d","localizacao":"l","area":"a","link":"https://x.org"}`))
	if err != nil {
		t.Fatal(err)
	}

	for name, actor := range map[string]*policy.Actor{"other organization": other, "organization without profile": noProfile} {
		if _, err := f.svc.Update(ctx, actor, o.ID, input(t, `{"titulo":"hijack"}`)); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("%s update: expected ErrNotFound, got %v", name, err)
		}
		if _, err := f.svc.Deactivate(ctx, actor, o.ID); !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("%s deactivate: expected ErrNotFound, got %v", name, err)
		}
	}

	updated, err := f.svc.Update(ctx, owner, o.ID, input(t, `{"titulo":"Novo título","link":null,"vagas":5}`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Novo título" || updated.Vacancies != 5 {
		t.Errorf("fields not merged: %+v", updated)
	}
	if updated.Link != nil {
		t.Errorf("null should clear link, got %v", *updated.Link)
	}
	if updated.Description != "d" || updated.Area != "a" {
		t.Errorf("omitted fields changed: %+v", updated)
	}

	if _, err := f.svc.Update(ctx, owner, o.ID, input(t, `{"titulo":null}`)); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("clearing a required field: expected ErrValidation, got %v", err)
	}

	ack, err := f.svc.Deactivate(ctx, owner, o.ID)
	if err != nil || ack.ID != o.ID {
		t.Fatalf("Deactivate() = %+v, %v", ack, err)
	}

	page, err := f.svc.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("deactivated opportunity still listed: %+v", page)
	}

	got, err := f.svc.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() after deactivate: %v", err)
	}
	if got.IsActive {
		t.Error("is_active should be false")
	}

	mine, err := f.svc.ListByOrganization(ctx, owner)
	if err != nil || len(mine) != 1 {
		t.Errorf("ListByOrganization() = %d items, %v; want inactive included", len(mine), err)
	}
	empty, err := f.svc.ListByOrganization(ctx, noProfile)
	if err != nil || len(empty) != 0 {
		t.Errorf("ListByOrganization() without organization = %v, %v", empty, err)
	}
}

func TestList_FiltersAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.orgActor(t, "O", true)

	seed := []string{
		`{"titulo":"Monitoria de Cálculo","descricao":"Apoio a alunos","localizacao":"Recife","area":"Educação"}`,
		`{"titulo":"Estágio Backend","descricao":"Go e SQL","localizacao":"Remoto","area":"Tecnologia","vagas":2}`,
		`{"titulo":"Voluntário ONG","descricao":"Ensino de PROGRAMAÇÃO","localizacao":"Recife","area":"Voluntariado"}`,
		`{"titulo":"100% remoto","descricao":"vaga_especial","localizacao":"Remoto","area":"Tecnologia"}`,
	}
	for _, body := range seed {
		if _, err := f.svc.Create(ctx, actor, input(t, body)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default newest first", Filter{}, []string{"100% remoto", "Voluntário ONG", "Estágio Backend", "Monitoria de Cálculo"}},
		{"term in description, unicode case folding", Filter{Term: "programação"}, []string{"Voluntário ONG"}},
		{"term in title", Filter{Term: "ESTÁGIO"}, []string{"Estágio Backend"}},
		{"percent is literal", Filter{Term: "100%"}, []string{"100% remoto"}},
		{"underscore is literal", Filter{Term: "a_e"}, []string{"100% remoto"}},
		{"area case-insensitive", Filter{Area: "tecnologia", Sort: "titulo", Direction: "asc"}, []string{"100% remoto", "Estágio Backend"}},
		{"location", Filter{Location: "recife", Sort: "titulo", Direction: "asc"}, []string{"Monitoria de Cálculo", "Voluntário ONG"}},
		{"page", Filter{Limit: 2, Offset: 1}, []string{"Voluntário ONG", "Estágio Backend"}},
		{"sort by vacancies desc", Filter{Sort: "vagas", Area: "Tecnologia"}, []string{"Estágio Backend", "100% remoto"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var got []string
			for _, o := range page.Items {
				got = append(got, o.Title)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	page, _ := f.svc.List(ctx, Filter{Limit: 2})
	if page.Total != 4 || page.Limit != 2 {
		t.Errorf("total/limit = %d/%d, want 4/2", page.Total, page.Limit)
	}
	page, _ = f.svc.List(ctx, Filter{Limit: 5000})
	if page.Limit != 100 {
		t.Errorf("limit should be capped at 100, got %d", page.Limit)
	}

	for _, bad := range []Filter{{Sort: "senha"}, {Direction: "sideways"}, {Offset: -1}} {
		if _, err := f.svc.List(ctx, bad); !errors.Is(err, errors.ErrValidation) {
			t.Errorf("List(%+v): expected ErrValidation, got %v", bad, err)
		}
	}

	areas, err := f.svc.DistinctAreas(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(areas) != "[Educação Tecnologia Voluntariado]" {
		t.Errorf("areas = %v", areas)
	}
	locations, _ := f.svc.DistinctLocations(ctx)
	if fmt.Sprint(locations) != "[Recife Remoto]" {
		t.Errorf("locations = %v", locations)
	}
}

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := f.orgActor(t, "O", true)

	o, err := f.svc.Create(ctx, actor, input(t, `{"titulo":"t","descricao":"d","localizacao":"l","area":"a"}`))
	if err != nil {
		t.Fatal(err)
	}

	png, err := f.svc.QRCode(ctx, o.ID, 0)
	if err != nil || len(png) == 0 {
		t.Fatalf("QRCode() = %d bytes, %v", len(png), err)
	}
	if _, err := f.svc.QRCode(ctx, 9999, 0); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing opportunity: expected ErrNotFound, got %v", err)
	}
}

func TestInputDistinguishesNullFromOmitted(t *testing.T) {
	in := input(t, `{"categoria_id":null}`)
	if !in.CategoryID.Set || !in.CategoryID.Null {
		t.Errorf("null categoria_id should be set and null: %+v", in.CategoryID)
	}
	if in.Title.Set {
		t.Error("omitted titulo should not be set")
	}
}
