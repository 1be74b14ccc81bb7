package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/database"
	"oportunidades/internal/platform/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts the account and fills in its id. A taken email is an
// ErrDuplicate; the unique index compares emails case-insensitively.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.Email = NormalizeEmail(account.Email)
	account.CreatedAt, account.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO usuarios (nome, email, senha, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.Name, account.Email, account.PasswordHash, account.Role, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errors.New(errors.ErrDuplicate, "Email já cadastrado")
		}
		return pkgerrors.Wrap(err, "insert account")
	}

	account.ID, err = res.LastInsertId()
	return pkgerrors.WithStack(err)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nome, email, senha, role, created_at, updated_at
		FROM usuarios WHERE id = ?
	`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nome, email, senha, role, created_at, updated_at
		FROM usuarios WHERE email = ?
	`, NormalizeEmail(email))
	return scanAccount(row)
}

func (r *AccountRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET nome = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		return pkgerrors.Wrap(err, "update account name")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrNotFound, "Usuário não encontrado")
	}
	return nil
}

func scanAccount(s interface {
	Scan(dest ...interface{}) error
}) (*models.Account, error) {
	account := &models.Account{}
	err := s.Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.Role, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "scan account")
	}
	return account, nil
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, nome, slug, descricao, website, telefone, endereco, usuario_id, created_at, updated_at`

// Create inserts org. An account that already owns one gets ErrDuplicate.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	now := time.Now().UTC()
	org.CreatedAt, org.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO organizacoes (nome, slug, descricao, website, telefone, endereco, usuario_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, org.Name, org.Slug, org.Description, org.Website, org.Phone, org.Address, org.AccountID, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errors.New(errors.ErrDuplicate, "Você já possui uma organização")
		}
		if database.IsForeignKeyViolation(err) {
			return errors.New(errors.ErrNotFound, "Usuário não encontrado")
		}
		return pkgerrors.Wrap(err, "insert organization")
	}

	org.ID, err = res.LastInsertId()
	return pkgerrors.WithStack(err)
}

// CreateIfAbsent inserts org unless the account already has one and reports
// whether a row was written. Concurrent callers cannot create two rows.
func (r *OrganizationRepository) CreateIfAbsent(ctx context.Context, org *models.Organization) (bool, error) {
	now := time.Now().UTC()
	org.CreatedAt, org.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO organizacoes (nome, slug, descricao, website, telefone, endereco, usuario_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(usuario_id) DO NOTHING
	`, org.Name, org.Slug, org.Description, org.Website, org.Phone, org.Address, org.AccountID, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return false, pkgerrors.Wrap(err, "insert organization")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, pkgerrors.WithStack(err)
	}
	return n > 0, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizacoes WHERE id = ?`, id)
	return scanOrganization(row)
}

func (r *OrganizationRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizacoes WHERE usuario_id = ?`, accountID)
	return scanOrganization(row)
}

func scanOrganization(s interface {
	Scan(dest ...interface{}) error
}) (*models.Organization, error) {
	org := &models.Organization{}
	var description, website, phone, address sql.NullString
	err := s.Scan(&org.ID, &org.Name, &org.Slug, &description, &website, &phone, &address, &org.AccountID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "scan organization")
	}
	org.Description = NullableString(description)
	org.Website = NullableString(website)
	org.Phone = NullableString(phone)
	org.Address = NullableString(address)
	return org, nil
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nome, descricao, created_at, updated_at
		FROM categorias ORDER BY nome ASC
	`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list categories")
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c := &models.Category{}
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, pkgerrors.Wrap(err, "scan category")
		}
		c.Description = NullableString(description)
		categories = append(categories, c)
	}
	return categories, pkgerrors.WithStack(rows.Err())
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categorias WHERE id = ?)", id).Scan(&exists)
	return exists, pkgerrors.WithStack(err)
}

// NullableString converts a scanned column into the *string the models use.
func NullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
