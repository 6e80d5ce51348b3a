package sweets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/server/models"
)

const sweetColumns = `id, name, description, price, quantity, image_url, category_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanSweet(row interface{ Scan(...any) error }) (*models.Sweet, error) {
	s := &models.Sweet{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Quantity,
		&s.ImageURL, &s.CategoryID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, sweet *models.Sweet) (*models.Sweet, error) {
	if sweet.ID == "" {
		sweet.ID = uuid.NewString()
	}
	query := `
		INSERT INTO sweets (id, name, description, price, quantity, image_url, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		sweet.ID, sweet.Name, sweet.Description, sweet.Price, sweet.Quantity,
		sweet.ImageURL, sweet.CategoryID).
		Scan(&sweet.CreatedAt, &sweet.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sweet, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id = $1`
	s, err := scanSweet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Sweet, error) {
	return r.queryMany(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY name`)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID string) ([]*models.Sweet, error) {
	return r.queryMany(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE category_id = $1 ORDER BY name`, categoryID)
}

// Search builds a WHERE clause from the filter so the database applies every
// constraint in one pass.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]*models.Sweet, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Name != "" {
		conds = append(conds, "name ILIKE "+arg("%"+filter.Name+"%"))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(filter.CategoryID))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.OnlyAvailable {
		conds = append(conds, "quantity > 0")
	}

	query := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name`

	return r.queryMany(ctx, query, args...)
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Sweet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Sweet
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, sweet *models.Sweet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sweets
		SET name = $2, description = $3, price = $4, quantity = $5,
		    image_url = $6, category_id = $7, updated_at = now()
		WHERE id = $1
	`, sweet.ID, sweet.Name, sweet.Description, sweet.Price, sweet.Quantity,
		sweet.ImageURL, sweet.CategoryID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DecrementQuantity runs a conditional UPDATE that only matches while enough
// stock remains, so concurrent purchases cannot oversell.
func (r *PostgresRepository) DecrementQuantity(ctx context.Context, id string, n int) (int, error) {
	query := `
		UPDATE sweets
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity
	`
	var remaining int
	if err := r.db.QueryRowContext(ctx, query, id, n).Scan(&remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the sweet is gone or the stock is short; disambiguate.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, common.ErrInsufficientStock
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return remaining, nil
}

func (r *PostgresRepository) IncrementQuantity(ctx context.Context, id string, n int) (int, error) {
	query := `
		UPDATE sweets
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity
	`
	var quantity int
	if err := r.db.QueryRowContext(ctx, query, id, n).Scan(&quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return quantity, nil
}

func (r *PostgresRepository) ListLowStock(ctx context.Context, threshold int) ([]*models.Sweet, error) {
	return r.queryMany(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE quantity <= $1 AND quantity > 0 ORDER BY quantity, name`,
		threshold)
}

func (r *PostgresRepository) ListTopSelling(ctx context.Context, limit int) ([]*models.Sweet, error) {
	return r.queryMany(ctx,
		`SELECT `+sweetColumns+` FROM sweets ORDER BY quantity DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) ListOutOfStock(ctx context.Context) ([]*models.Sweet, error) {
	return r.queryMany(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE quantity = 0 ORDER BY name`)
}

func (r *PostgresRepository) SetImageURL(ctx context.Context, id string, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sweets SET image_url = $2, updated_at = now() WHERE id = $1`, id, imageURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sweets WHERE category_id = $1`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
