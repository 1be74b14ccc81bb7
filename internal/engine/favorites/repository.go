package favorites

import (
	"context"
	"database/sql"
	"time"

	pkgerrors "github.com/pkg/errors"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/database"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the pair unless it already exists. It reports false when the
// pair was already there.
func (r *Repository) Add(ctx context.Context, f *Favorite) (bool, error) {
	now := time.Now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO favoritos (usuario_id, oportunidade_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(usuario_id, oportunidade_id) DO NOTHING
	`, f.AccountID, f.OpportunityID, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
		}
		return false, pkgerrors.Wrap(err, "insert favorite")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, pkgerrors.WithStack(err)
	}
	if n == 0 {
		return false, nil
	}
	f.ID, err = res.LastInsertId()
	return true, pkgerrors.WithStack(err)
}

func (r *Repository) Remove(ctx context.Context, accountID, opportunityID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favoritos WHERE usuario_id = ? AND oportunidade_id = ?`, accountID, opportunityID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "delete favorite")
	}
	n, err := res.RowsAffected()
	return n > 0, pkgerrors.WithStack(err)
}

func (r *Repository) Exists(ctx context.Context, accountID, opportunityID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favoritos WHERE usuario_id = ? AND oportunidade_id = ?`, accountID, opportunityID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(err, "check favorite")
	}
	return true, nil
}

// ListOpportunities returns the account's favorited opportunities, most
// recently favorited first. Inactive opportunities are included.
func (r *Repository) ListOpportunities(ctx context.Context, accountID int64) ([]*opportunities.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+opportunities.JoinedColumns+`
		FROM favoritos f
		JOIN oportunidades o ON o.id = f.oportunidade_id `+opportunities.JoinClause+`
		WHERE f.usuario_id = ?
		ORDER BY f.created_at DESC, f.id DESC
	`, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query favorites")
	}
	defer rows.Close()

	items := []*opportunities.Opportunity{}
	for rows.Next() {
		o, err := opportunities.ScanJoined(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, pkgerrors.WithStack(rows.Err())
}
