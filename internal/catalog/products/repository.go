package products

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
	List(ctx context.Context, filters catalog.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id string, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool db.Pool
}

// NewRepository returns a PostgreSQL backed Repository. Writes run in a
// transaction so the subcategory placement check and the write see the same rows.
func NewRepository(pool db.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id::text, name, category_id::text, subcategory_id::text, image, status, created_at, updated_at`

func scan(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category.ID, &p.Subcategory.ID, &p.Image, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters catalog.ListFilters) ([]Product, int, error) {
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
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, oops.Code("PRODUCT_QUERY_FAILED").With("operation", "count").Wrap(err)
	}

	page, args := where.Page(filters)
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM products`+where.SQL()+` ORDER BY name ASC`+page, args...)
	if err != nil {
		return nil, 0, oops.Code("PRODUCT_QUERY_FAILED").With("operation", "list").Wrap(err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, oops.Code("PRODUCT_QUERY_FAILED").With("operation", "scan").Wrap(err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, shared.ErrNotFound
	}
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, oops.Code("PRODUCT_QUERY_FAILED").With("operation", "get").With("id", id).Wrap(err)
	}
	return p, nil
}

// checkPlacement locks the subcategory row and confirms it belongs to categoryID.
func checkPlacement(ctx context.Context, tx db.DBTX, categoryID, subcategoryID string) error {
	var owner string
	err := tx.QueryRow(ctx, `SELECT category_id::text FROM subcategories WHERE id = $1 FOR SHARE`, subcategoryID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return errSubcategoryMissing()
	}
	if err != nil {
		return oops.Code("PRODUCT_QUERY_FAILED").With("operation", "check placement").Wrap(err)
	}
	if owner != categoryID {
		return errSubcategoryMismatch()
	}
	return nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	var created Product
	err := db.WithTx(ctx, r.pool, func(tx db.DBTX) error {
		if err := checkPlacement(ctx, tx, product.Category.ID, product.Subcategory.ID); err != nil {
			return err
		}
		p, err := scan(tx.QueryRow(ctx,
			`INSERT INTO products (id, name, category_id, subcategory_id, image, status)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+columns,
			uuid.NewString(), product.Name, product.Category.ID, product.Subcategory.ID, product.Image, product.Status))
		if err != nil {
			return writeError("create", err)
		}
		created = p
		return nil
	})
	return created, err
}

func (r *repository) Update(ctx context.Context, id string, product Product) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, shared.ErrNotFound
	}
	var updated Product
	err := db.WithTx(ctx, r.pool, func(tx db.DBTX) error {
		if err := checkPlacement(ctx, tx, product.Category.ID, product.Subcategory.ID); err != nil {
			return err
		}
		p, err := scan(tx.QueryRow(ctx,
			`UPDATE products SET name = $2, category_id = $3, subcategory_id = $4, image = $5, status = $6, updated_at = NOW()
			 WHERE id = $1 RETURNING `+columns,
			id, product.Name, product.Category.ID, product.Subcategory.ID, product.Image, product.Status))
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		if err != nil {
			return writeError("update", err)
		}
		updated = p
		return nil
	})
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return shared.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return oops.Code("PRODUCT_WRITE_FAILED").With("operation", "delete").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func writeError(op string, err error) error {
	if db.IsForeignKeyViolation(err) {
		return shared.NewValidationError("referenced category or subcategory does not exist", nil)
	}
	return oops.Code("PRODUCT_WRITE_FAILED").With("operation", op).Wrap(err)
}
