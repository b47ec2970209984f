package categories

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

// Repository defines category persistence.
type Repository interface {
	List(ctx context.Context, filters catalog.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id string) (Category, error)
	GetMany(ctx context.Context, ids []string) (map[string]Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id string, category Category) (Category, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const columns = `id::text, name, image, status, created_at, updated_at`

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Image, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters catalog.ListFilters) ([]Category, int, error) {
	var where catalog.Where
	if filters.Search != "" {
		where.Add(`name ILIKE $%d`, catalog.LikePattern(filters.Search))
	}
	if filters.Status != nil {
		where.Add(`status = $%d`, *filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "count").Wrap(err)
	}

	page, args := where.Page(filters)
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM categories`+where.SQL()+` ORDER BY name ASC`+page, args...)
	if err != nil {
		return nil, 0, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "list").Wrap(err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, 0, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "scan").Wrap(err)
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Category{}, shared.ErrNotFound
	}
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	if err != nil {
		return Category{}, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "get").With("id", id).Wrap(err)
	}
	return c, nil
}

// GetMany skips ids that are not UUIDs.
func (r *repository) GetMany(ctx context.Context, ids []string) (map[string]Category, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	out := make(map[string]Category, len(valid))
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM categories WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "get many").Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, oops.Code("CATEGORY_QUERY_FAILED").With("operation", "scan").Wrap(err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	c, err := scan(r.db.QueryRow(ctx,
		`INSERT INTO categories (id, name, image, status) VALUES ($1, $2, $3, $4) RETURNING `+columns,
		uuid.NewString(), category.Name, category.Image, category.Status))
	if err != nil {
		return Category{}, r.writeError("create", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id string, category Category) (Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Category{}, shared.ErrNotFound
	}
	c, err := scan(r.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, image = $3, status = $4, updated_at = NOW() WHERE id = $1 RETURNING `+columns,
		id, category.Name, category.Image, category.Status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	if err != nil {
		return Category{}, r.writeError("update", err)
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return shared.NewValidationError("category is still used by subcategories or products", nil)
		}
		return oops.Code("CATEGORY_WRITE_FAILED").With("operation", "delete").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) writeError(op string, err error) error {
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicateKey
	}
	return oops.Code("CATEGORY_WRITE_FAILED").With("operation", op).Wrap(err)
}
