package inscriptions

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/database/dbtest"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

type fixture struct {
	svc           *Service
	opportunities *opportunities.Service
	accounts      *repositories.AccountRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	orgs := organizations.NewService(repositories.NewOrganizationRepository(db))
	oppRepo := opportunities.NewRepository(db)
	opps := opportunities.NewService(oppRepo, orgs, repositories.NewCategoryRepository(db),
		config.OpportunitiesConfig{DefaultPageSize: 20, MaxPageSize: 100}, "http://localhost:3001")

	svc := NewService(NewRepository(db), oppRepo)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, opportunities: opps, accounts: repositories.NewAccountRepository(db)}
}

func (f *fixture) actor(t *testing.T, name, role string) *policy.Actor {
	t.Helper()
	a := &models.Account{Name: name, Email: name + "@example.com", PasswordHash: "hash", Role: role}
	if err := f.accounts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return &policy.Actor{AccountID: a.ID, Role: a.Role, Name: a.Name}
}

func (f *fixture) publish(t *testing.T, owner *policy.Actor, extra string) *opportunities.Opportunity {
	t.Helper()
	var in opportunities.Input
	body := `{"titulo":"t","descricao":"d","localizacao":"l","area":"a"` + extra + `}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatal(err)
	}
	o, err := f.opportunities.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatal(err)
	}
	owner.OrganizationID = &o.OrganizationID
	return o
}

func TestApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.actor(t, "O", models.RoleOrganization)
	open := f.publish(t, org, `,"prazo_inscricao":"2025-03-01"`)
	reviewed := f.publish(t, org, `,"requires_approval":true`)
	closed := f.publish(t, org, `,"prazo_inscricao":"2025-02-28"`)
	inactive := f.publish(t, org, "")
	if _, err := f.opportunities.Deactivate(ctx, org, inactive.ID); err != nil {
		t.Fatal(err)
	}

	student := f.actor(t, "S", models.RoleStudent)
	notes := "  Tenho experiência  "

	ins, err := f.svc.Apply(ctx, student, open.ID, ApplyInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if ins.Status != StatusApproved || ins.Notes == nil || *ins.Notes != "Tenho experiência" {
		t.Errorf("unexpected inscription: %+v", ins)
	}

	ins, err = f.svc.Apply(ctx, student, reviewed.ID, ApplyInput{})
	if err != nil || ins.Status != StatusPending {
		t.Errorf("Apply() with approval = %+v, %v; want pending", ins, err)
	}

	tests := []struct {
		name  string
		actor *policy.Actor
		id    int64
		want  error
	}{
		{"again", student, open.ID, errors.ErrDuplicate},
		{"deadline passed", student, closed.ID, errors.ErrValidation},
		{"inactive", student, inactive.ID, errors.ErrValidation},
		{"missing", student, 999, errors.ErrNotFound},
		{"anonymous", nil, open.ID, errors.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Apply(ctx, tt.actor, tt.id, ApplyInput{}); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	mine, err := f.svc.ListMine(ctx, student)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 || mine[0].OpportunityID != reviewed.ID || mine[0].Opportunity == nil {
		t.Errorf("ListMine() should return newest first with opportunities, got %d items", len(mine))
	}
}

func TestApply_Capacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.actor(t, "O", models.RoleOrganization)
	o := f.publish(t, org, `,"max_participantes":2,"requires_approval":true`)

	var first *Inscription
	for i := 0; i < 2; i++ {
		ins, err := f.svc.Apply(ctx, f.actor(t, fmt.Sprintf("s%d", i), models.RoleStudent), o.ID, ApplyInput{})
		if err != nil {
			t.Fatal(err)
		}
		if first == nil {
			first = ins
		}
	}

	late := f.actor(t, "late", models.RoleStudent)
	if _, err := f.svc.Apply(ctx, late, o.ID, ApplyInput{}); !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("full opportunity: expected ErrDuplicate, got %v", err)
	}

	// Rejected inscriptions free their place.
	if _, err := f.svc.UpdateStatus(ctx, org, first.ID, StatusInput{Status: StatusRejected}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Apply(ctx, late, o.ID, ApplyInput{}); err != nil {
		t.Errorf("Apply() after a rejection: %v", err)
	}
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.actor(t, "O", models.RoleOrganization)
	other := f.actor(t, "P", models.RoleOrganization)
	f.publish(t, other, "")
	o := f.publish(t, owner, `,"requires_approval":true`)
	student := f.actor(t, "S", models.RoleStudent)

	ins, err := f.svc.Apply(ctx, student, o.ID, ApplyInput{})
	if err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListForOpportunity(ctx, owner, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Account == nil || list[0].Account.Email != "s@example.com" {
		t.Errorf("ListForOpportunity() = %+v", list)
	}
	if _, err := f.svc.ListForOpportunity(ctx, other, o.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("other organization: expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, other, ins.ID, StatusInput{Status: StatusApproved}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("other organization update: expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, student, ins.ID, StatusInput{Status: StatusApproved}); !errors.Is(err, errors.ErrForbidden) {
		t.Errorf("student update: expected ErrForbidden, got %v", err)
	}

	steps := []struct {
		to      string
		wantErr bool
	}{
		{StatusCompleted, true},
		{StatusApproved, false},
		{StatusPending, true},
		{StatusCompleted, false},
		{StatusRejected, true},
	}
	for _, step := range steps {
		got, err := f.svc.UpdateStatus(ctx, owner, ins.ID, StatusInput{Status: step.to})
		if (err != nil) != step.wantErr {
			t.Fatalf("UpdateStatus(%s) error = %v, wantErr %v", step.to, err, step.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrValidation) {
			t.Errorf("UpdateStatus(%s): expected ErrValidation, got %v", step.to, err)
		}
		if err == nil && got.Status != step.to {
			t.Errorf("status = %s, want %s", got.Status, step.to)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusRejected, true},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusRejected, false},
		{StatusPending, "archived", false},
	}
	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
