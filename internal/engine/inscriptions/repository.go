package inscriptions

import (
	"context"
	"database/sql"
	"time"

	pkgerrors "github.com/pkg/errors"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/database"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

const columns = `i.id, i.status, i.observacoes, i.usuario_id, i.oportunidade_id, i.created_at, i.updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the inscription only while fewer than capacity non-rejected
// inscriptions exist for the opportunity. The check and the insert are one
// statement. It reports false when the opportunity is full.
func (r *Repository) Create(ctx context.Context, in *Inscription, capacity int) (bool, error) {
	now := time.Now().UTC()
	in.CreatedAt, in.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO inscricoes (status, observacoes, usuario_id, oportunidade_id, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM inscricoes WHERE oportunidade_id = ? AND status <> 'rejected') < ?
	`, in.Status, in.Notes, in.AccountID, in.OpportunityID, in.CreatedAt, in.UpdatedAt, in.OpportunityID, capacity)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return false, errors.New(errors.ErrDuplicate, "Você já se inscreveu nesta oportunidade")
		case database.IsForeignKeyViolation(err):
			return false, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
		}
		return false, pkgerrors.Wrap(err, "insert inscription")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, pkgerrors.WithStack(err)
	}
	if n == 0 {
		return false, nil
	}
	in.ID, err = res.LastInsertId()
	return true, pkgerrors.WithStack(err)
}

func (r *Repository) Exists(ctx context.Context, accountID, opportunityID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM inscricoes WHERE usuario_id = ? AND oportunidade_id = ?`, accountID, opportunityID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(err, "check inscription")
	}
	return true, nil
}

// GetWithOwner returns the inscription and the organization owning its
// opportunity, or nil when it does not exist.
func (r *Repository) GetWithOwner(ctx context.Context, id int64) (*Inscription, int64, error) {
	var organizationID int64
	in := &Inscription{}
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT `+columns+`, o.organizacao_id
		FROM inscricoes i JOIN oportunidades o ON o.id = i.oportunidade_id
		WHERE i.id = ?
	`, id).Scan(&in.ID, &in.Status, &notes, &in.AccountID, &in.OpportunityID, &in.CreatedAt, &in.UpdatedAt, &organizationID)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "get inscription")
	}
	in.Notes = repositories.NullableString(notes)
	return in, organizationID, nil
}

// UpdateStatus moves the inscription from one status to another. It reports
// false when the stored status is no longer from.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inscricoes SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return false, pkgerrors.Wrap(err, "update inscription status")
	}
	n, err := res.RowsAffected()
	return n > 0, pkgerrors.WithStack(err)
}

// ListByAccount returns the account's inscriptions with their opportunities,
// newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]*Inscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+`, `+opportunities.JoinedColumns+`
		FROM inscricoes i
		JOIN oportunidades o ON o.id = i.oportunidade_id `+opportunities.JoinClause+`
		WHERE i.usuario_id = ?
		ORDER BY i.created_at DESC, i.id DESC
	`, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query inscriptions")
	}
	defer rows.Close()

	items := []*Inscription{}
	for rows.Next() {
		in := &Inscription{}
		var notes sql.NullString
		o, err := opportunities.ScanJoined(prefixed{rows, []interface{}{
			&in.ID, &in.Status, &notes, &in.AccountID, &in.OpportunityID, &in.CreatedAt, &in.UpdatedAt,
		}})
		if err != nil {
			return nil, err
		}
		in.Notes = repositories.NullableString(notes)
		in.Opportunity = o
		items = append(items, in)
	}
	return items, pkgerrors.WithStack(rows.Err())
}

// ListByOpportunity returns an opportunity's inscriptions with the applying
// accounts, oldest first.
func (r *Repository) ListByOpportunity(ctx context.Context, opportunityID int64) ([]*Inscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+`, u.id, u.nome, u.email, u.role, u.created_at, u.updated_at
		FROM inscricoes i JOIN usuarios u ON u.id = i.usuario_id
		WHERE i.oportunidade_id = ?
		ORDER BY i.created_at ASC, i.id ASC
	`, opportunityID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query inscriptions")
	}
	defer rows.Close()

	items := []*Inscription{}
	for rows.Next() {
		in := &Inscription{Account: &models.Account{}}
		var notes sql.NullString
		a := in.Account
		if err := rows.Scan(
			&in.ID, &in.Status, &notes, &in.AccountID, &in.OpportunityID, &in.CreatedAt, &in.UpdatedAt,
			&a.ID, &a.Name, &a.Email, &a.Role, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, pkgerrors.Wrap(err, "scan inscription")
		}
		in.Notes = repositories.NullableString(notes)
		items = append(items, in)
	}
	return items, pkgerrors.WithStack(rows.Err())
}

// prefixed scans leading columns into its own destinations before the
// ones its caller passes.
type prefixed struct {
	rows *sql.Rows
	dest []interface{}
}

func (p prefixed) Scan(dest ...interface{}) error {
	return p.rows.Scan(append(p.dest, dest...)...)
}
