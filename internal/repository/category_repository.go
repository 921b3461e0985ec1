package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"
)

var (
	ErrCategoryAlreadyExists = errors.New("category with this slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, scope tenant.Scope, category *domain.Category) error
	List(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category owned by the scope's dealer
func (r *categoryRepository) Create(ctx context.Context, scope tenant.Scope, category *domain.Category) error {
	if err := scope.Check(); err != nil {
		return err
	}
	category.DealerID = scope.DealerID()

	query := `
		INSERT INTO product_categories (id, dealer_id, name, slug, sort_order, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.DealerID,
		category.Name,
		category.Slug,
		category.SortOrder,
		category.IsActive,
		category.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "uq_product_categories_slug") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves the dealer's categories in display order
func (r *categoryRepository) List(ctx context.Context, scope tenant.Scope) ([]*domain.Category, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, name, slug, sort_order, is_active, created_at
		FROM product_categories
		WHERE dealer_id = $1
		ORDER BY sort_order ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, scope.DealerID())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.DealerID,
			&category.Name,
			&category.Slug,
			&category.SortOrder,
			&category.IsActive,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
