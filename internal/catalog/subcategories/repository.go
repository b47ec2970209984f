package subcategories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters catalog.ListFilters) ([]Subcategory, int, error)
	Get(ctx context.Context, id string) (Subcategory, error)
	GetMany(ctx context.Context, ids []string) (map[string]Subcategory, error)
	Create(ctx context.Context, sub Subcategory) (Subcategory, error)
	Update(ctx context.Context, id string, sub Subcategory) (Subcategory, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = `id::text, name, category_id::text, image, status, created_at, updated_at`

func scan(row pgx.Row) (Subcategory, error) {
	var s Subcategory
	err := row.Scan(&s.ID, &s.Name, &s.Category.ID, &s.Image, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) List(ctx context.Context, filters catalog.ListFilters) ([]Subcategory, int, error) {
	var where catalog.Where
	if filters.Search != "" {
		where.Add(`name ILIKE $%d`, catalog.LikePattern(filters.Search))
	}
	if filters.Status != nil {
		where.Add(`status = $%d`, *filters.Status)
	}
	if filters.CategoryID != "" {
		if _, err := uuid.Parse(filters.CategoryID); err != nil {
			return nil, 0, nil
		}
		where.Add(`category_id = $%d`, filters.CategoryID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subcategories`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, oops.Code("SUBCATEGORY_QUERY_FAILED").With("operation", "count").Wrap(err)
	}

	page, args := where.Page(filters)
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM subcategories`+where.SQL()+` ORDER BY name ASC`+page, args...)
	if err != nil {
		return nil, 0, oops.Code("SUBCATEGORY_QUERY_FAILED").With("operation", "list").Wrap(err)
	}
	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]Subcategory, int, error) {
	defer rows.Close()
	var out []Subcategory
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, 0, oops.Code("SUBCATEGORY_QUERY_FAILED").With("operation", "scan").Wrap(err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Subcategory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Subcategory{}, shared.ErrNotFound
	}
	s, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM subcategories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Subcategory{}, shared.ErrNotFound
	}
	if err != nil {
		return Subcategory{}, oops.Code("SUBCATEGORY_QUERY_FAILED").With("operation", "get").With("id", id).Wrap(err)
	}
	return s, nil
}

func (r *repository) GetMany(ctx context.Context, ids []string) (map[string]Subcategory, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	out := make(map[string]Subcategory, len(valid))
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM subcategories WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, oops.Code("SUBCATEGORY_QUERY_FAILED").With("operation", "get many").Wrap(err)
	}
	list, _, err := collect(rows, 0)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, sub Subcategory) (Subcategory, error) {
	s, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO subcategories (id, name, category_id, image, status) VALUES ($1, $2, $3, $4, $5) RETURNING `+columns,
		uuid.NewString(), sub.Name, sub.Category.ID, sub.Image, sub.Status))
	if err != nil {
		return Subcategory{}, writeError("create", err)
	}
	return s, nil
}

func (r *repository) Update(ctx context.Context, id string, sub Subcategory) (Subcategory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Subcategory{}, shared.ErrNotFound
	}
	s, err := scan(r.db.QueryRow(ctx,
		`UPDATE subcategories SET name = $2, category_id = $3, image = $4, status = $5, updated_at = NOW() WHERE id = $1 RETURNING `+columns,
		id, sub.Name, sub.Category.ID, sub.Image, sub.Status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Subcategory{}, shared.ErrNotFound
	}
	if err != nil {
		return Subcategory{}, writeError("update", err)
	}
	return s, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.NewValidationError("subcategory is still used by products", nil)
		}
		return oops.Code("SUBCATEGORY_WRITE_FAILED").With("operation", "delete").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func writeError(op string, err error) error {
	if db.IsForeignKeyViolation(err) {
		return shared.NewValidationError("category does not exist", map[string]string{"category": "does not exist"})
	}
	return oops.Code("SUBCATEGORY_WRITE_FAILED").With("operation", op).Wrap(err)
}
