package organizations

import (
	"context"
	"sync"
	"testing"

	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/database/dbtest"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

func setup(t *testing.T) (*Service, *repositories.AccountRepository) {
	t.Helper()
	db := dbtest.Open(t)
	return NewService(repositories.NewOrganizationRepository(db)), repositories.NewAccountRepository(db)
}

func createAccount(t *testing.T, accounts *repositories.AccountRepository, email, role string) *models.Account {
	t.Helper()
	a := &models.Account{Name: "Instituto Aurora", Email: email, PasswordHash: "hash", Role: role}
	if err := accounts.Create(context.Background(), a); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestEnsureDefault_Idempotent(t *testing.T) {
	svc, accounts := setup(t)
	ctx := context.Background()
	owner := createAccount(t, accounts, "aurora@example.com", models.RoleOrganization)

	var wg sync.WaitGroup
	results := make([]*models.Organization, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.EnsureDefault(ctx, owner.ID, owner.Name, nil)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("EnsureDefault() call %d error = %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Errorf("call %d returned organization %d, want %d", i, results[i].ID, results[0].ID)
		}
	}

	org := results[0]
	if org.Name != "Organização Instituto Aurora" {
		t.Errorf("name = %q", org.Name)
	}
	if org.Description == nil || *org.Description != "Organização de Instituto Aurora" {
		t.Errorf("description = %v", org.Description)
	}
}

func TestEnsureDefault_UsesInput(t *testing.T) {
	svc, accounts := setup(t)
	owner := createAccount(t, accounts, "aurora@example.com", models.RoleOrganization)
	site := "https://aurora.org"

	org, err := svc.EnsureDefault(context.Background(), owner.ID, owner.Name, &Input{Name: "Aurora ONG", Website: &site})
	if err != nil {
		t.Fatal(err)
	}
	if org.Name != "Aurora ONG" || org.Slug != "aurora-ong" {
		t.Errorf("unexpected organization %+v", org)
	}
	if org.Website == nil || *org.Website != site {
		t.Errorf("website = %v", org.Website)
	}
}

func TestCreate(t *testing.T) {
	svc, accounts := setup(t)
	ctx := context.Background()
	owner := createAccount(t, accounts, "aurora@example.com", models.RoleOrganization)
	student := createAccount(t, accounts, "ana@example.com", models.RoleStudent)

	orgActor := &policy.Actor{AccountID: owner.ID, Role: models.RoleOrganization}

	if _, err := svc.Create(ctx, orgActor, Input{Name: "  "}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("blank name: expected ErrValidation, got %v", err)
	}

	bad := "aurora.org"
	if _, err := svc.Create(ctx, orgActor, Input{Name: "Aurora", Website: &bad}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("bad website: expected ErrValidation, got %v", err)
	}

	org, err := svc.Create(ctx, orgActor, Input{Name: "Aurora"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if org.ID == 0 || org.AccountID != owner.ID {
		t.Errorf("unexpected organization %+v", org)
	}

	// The actor snapshot predates the organization; the constraint still holds.
	if _, err := svc.Create(ctx, orgActor, Input{Name: "Aurora 2"}); !errors.Is(err, errors.ErrDuplicate) {
		t.Errorf("second create: expected ErrDuplicate, got %v", err)
	}

	studentActor := &policy.Actor{AccountID: student.ID, Role: models.RoleStudent}
	if _, err := svc.Create(ctx, studentActor, Input{Name: "Ana"}); !errors.Is(err, errors.ErrForbidden) {
		t.Errorf("student: expected ErrForbidden, got %v", err)
	}
}

func TestGetMine(t *testing.T) {
	svc, accounts := setup(t)
	ctx := context.Background()
	owner := createAccount(t, accounts, "aurora@example.com", models.RoleOrganization)
	actor := &policy.Actor{AccountID: owner.ID, Role: models.RoleOrganization}

	if _, err := svc.GetMine(ctx, actor); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound before creation, got %v", err)
	}

	if _, err := svc.EnsureDefault(ctx, owner.ID, owner.Name, nil); err != nil {
		t.Fatal(err)
	}
	org, err := svc.GetMine(ctx, actor)
	if err != nil || org.AccountID != owner.ID {
		t.Errorf("GetMine() = %+v, %v", org, err)
	}
}
