package opportunities

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/database"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

// JoinedColumns selects an opportunity (alias o) with its organization (g),
// the organization's account (u) and its category (c), in ScanJoined order.
const JoinedColumns = `
	o.id, o.titulo, o.descricao, o.localizacao, o.area, o.vagas,
	o.data_inicio, o.data_fim, o.prazo_inscricao, o.max_participantes,
	o.requires_approval, o.link, o.is_active, o.imagem, o.organizacao_id,
	o.categoria_id, o.created_at, o.updated_at,
	g.id, g.nome, g.slug, g.descricao, g.website, g.telefone, g.endereco,
	g.usuario_id, g.created_at, g.updated_at,
	u.id, u.nome, u.email, u.role, u.created_at, u.updated_at,
	c.id, c.nome, c.descricao, c.created_at, c.updated_at`

// JoinClause attaches g, u and c to an opportunity aliased o.
const JoinClause = `
	JOIN organizacoes g ON g.id = o.organizacao_id
	JOIN usuarios u ON u.id = g.usuario_id
	LEFT JOIN categorias c ON c.id = o.categoria_id`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, o *Opportunity) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO oportunidades (
			titulo, descricao, localizacao, area, vagas,
			data_inicio, data_fim, prazo_inscricao, max_participantes,
			requires_approval, link, is_active, imagem, organizacao_id,
			categoria_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.Title, o.Description, o.Location, o.Area, o.Vacancies,
		o.StartDate, o.EndDate, o.Deadline, o.MaxParticipants,
		o.RequiresApproval, o.Link, o.IsActive, o.Image, o.OrganizationID,
		o.CategoryID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.New(errors.ErrValidation, "Organização ou categoria inexistente")
		}
		return pkgerrors.Wrap(err, "insert opportunity")
	}

	o.ID, err = res.LastInsertId()
	return pkgerrors.WithStack(err)
}

// GetByID returns the joined opportunity whatever its active flag, or nil.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Opportunity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+JoinedColumns+` FROM oportunidades o `+JoinClause+` WHERE o.id = ?`, id)
	o, err := ScanJoined(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

// GetOwned returns the opportunity only if organizationID owns it.
func (r *Repository) GetOwned(ctx context.Context, id, organizationID int64) (*Opportunity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+JoinedColumns+` FROM oportunidades o `+JoinClause+`
		WHERE o.id = ? AND o.organizacao_id = ?`, id, organizationID)
	o, err := ScanJoined(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

// Update writes the mutable fields, scoped to the owning organization.
func (r *Repository) Update(ctx context.Context, o *Opportunity) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE oportunidades SET
			titulo = ?, descricao = ?, localizacao = ?, area = ?, vagas = ?,
			data_inicio = ?, data_fim = ?, prazo_inscricao = ?, max_participantes = ?,
			requires_approval = ?, link = ?, imagem = ?, categoria_id = ?, updated_at = ?
		WHERE id = ? AND organizacao_id = ?
	`,
		o.Title, o.Description, o.Location, o.Area, o.Vacancies,
		o.StartDate, o.EndDate, o.Deadline, o.MaxParticipants,
		o.RequiresApproval, o.Link, o.Image, o.CategoryID, o.UpdatedAt,
		o.ID, o.OrganizationID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.New(errors.ErrValidation, "Categoria inexistente")
		}
		return pkgerrors.Wrap(err, "update opportunity")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	return nil
}

// Deactivate soft-deletes; the row stays for history.
func (r *Repository) Deactivate(ctx context.Context, id, organizationID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE oportunidades SET is_active = 0, updated_at = ? WHERE id = ? AND organizacao_id = ?`,
		time.Now().UTC(), id, organizationID)
	if err != nil {
		return pkgerrors.Wrap(err, "deactivate opportunity")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	return nil
}

// List returns one page of active opportunities matching f, plus the total
// number of matches. f must already be normalised.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Opportunity, int, error) {
	where := []string{"o.is_active = 1"}
	var args []interface{}

	if f.Term != "" {
		pattern := "%" + escapeLike(database.Fold(f.Term)) + "%"
		where = append(where, `(fold(o.titulo) LIKE ? ESCAPE '\' OR fold(o.descricao) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.Area != "" {
		where = append(where, "fold(o.area) = ?")
		args = append(args, database.Fold(f.Area))
	}
	if f.Location != "" {
		where = append(where, "fold(o.localizacao) = ?")
		args = append(args, database.Fold(f.Location))
	}
	if f.CategoryID != nil {
		where = append(where, "o.categoria_id = ?")
		args = append(args, *f.CategoryID)
	}
	whereSQL := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM oportunidades o`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count opportunities")
	}

	column, ok := sortColumns[f.Sort]
	if !ok {
		column = sortColumns["createdAt"]
	}
	direction := "DESC"
	if f.Direction == "asc" {
		direction = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, o.id %s", column, direction, direction)

	query := `SELECT ` + JoinedColumns + ` FROM oportunidades o ` + JoinClause + whereSQL + order + ` LIMIT ? OFFSET ?`
	items, err := r.query(ctx, query, append(args, f.Limit, f.Offset)...)
	return items, total, err
}

// ListByOrganization returns all of an organization's opportunities,
// inactive ones included, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, organizationID int64) ([]*Opportunity, error) {
	return r.query(ctx, `SELECT `+JoinedColumns+` FROM oportunidades o `+JoinClause+`
		WHERE o.organizacao_id = ? ORDER BY o.created_at DESC, o.id DESC`, organizationID)
}

func (r *Repository) DistinctAreas(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "area")
}

func (r *Repository) DistinctLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "localizacao")
}

// distinct only ever receives one of the fixed column names above.
func (r *Repository) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT DISTINCT %[1]s FROM oportunidades
		WHERE is_active = 1 AND %[1]s IS NOT NULL AND TRIM(%[1]s) <> ''
		ORDER BY %[1]s ASC`, column))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "distinct %s", column)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, pkgerrors.WithStack(err)
		}
		values = append(values, v)
	}
	return values, pkgerrors.WithStack(rows.Err())
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]*Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query opportunities")
	}
	defer rows.Close()

	items := []*Opportunity{}
	for rows.Next() {
		o, err := ScanJoined(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, pkgerrors.WithStack(rows.Err())
}

// ScanJoined scans a row selected with JoinedColumns. sql.ErrNoRows is
// returned unwrapped.
func ScanJoined(s interface {
	Scan(dest ...interface{}) error
}) (*Opportunity, error) {
	o := &Opportunity{}
	org := &models.Organization{}
	account := &models.Account{}

	var startDate, endDate, deadline, link, image sql.NullString
	var categoryID sql.NullInt64
	var orgDescription, orgWebsite, orgPhone, orgAddress sql.NullString
	var catID sql.NullInt64
	var catName, catDescription sql.NullString
	var catCreated, catUpdated sql.NullTime

	err := s.Scan(
		&o.ID, &o.Title, &o.Description, &o.Location, &o.Area, &o.Vacancies,
		&startDate, &endDate, &deadline, &o.MaxParticipants,
		&o.RequiresApproval, &link, &o.IsActive, &image, &o.OrganizationID,
		&categoryID, &o.CreatedAt, &o.UpdatedAt,
		&org.ID, &org.Name, &org.Slug, &orgDescription, &orgWebsite, &orgPhone, &orgAddress,
		&org.AccountID, &org.CreatedAt, &org.UpdatedAt,
		&account.ID, &account.Name, &account.Email, &account.Role, &account.CreatedAt, &account.UpdatedAt,
		&catID, &catName, &catDescription, &catCreated, &catUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, "scan opportunity")
	}

	o.StartDate = repositories.NullableString(startDate)
	o.EndDate = repositories.NullableString(endDate)
	o.Deadline = repositories.NullableString(deadline)
	o.Link = repositories.NullableString(link)
	o.Image = repositories.NullableString(image)
	if categoryID.Valid {
		id := categoryID.Int64
		o.CategoryID = &id
	}

	org.Description = repositories.NullableString(orgDescription)
	org.Website = repositories.NullableString(orgWebsite)
	org.Phone = repositories.NullableString(orgPhone)
	org.Address = repositories.NullableString(orgAddress)
	org.Account = account
	o.Organization = org

	if catID.Valid {
		o.Category = &models.Category{
			ID:          catID.Int64,
			Name:        catName.String,
			Description: repositories.NullableString(catDescription),
			CreatedAt:   catCreated.Time,
			UpdatedAt:   catUpdated.Time,
		}
	}
	return o, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
