package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID *uuid.UUID
	Query      string
	ActiveOnly bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  SortOrder
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, scope tenant.Scope, product *domain.Product) error
	CreateVariant(ctx context.Context, scope tenant.Scope, variant *domain.ProductVariant) error
	FindByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	FindVariantsByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.ProductVariant, error)
	ListVariants(ctx context.Context, scope tenant.Scope, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.ProductVariant, error)
	List(ctx context.Context, scope tenant.Scope, filter ProductFilter) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const productColumns = `id, dealer_id, category_id, name, description, price, images, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product     domain.Product
		categoryID  uuid.NullUUID
		description sql.NullString
		images      []byte
	)
	err := row.Scan(
		&product.ID,
		&product.DealerID,
		&categoryID,
		&product.Name,
		&description,
		&product.Price,
		&images,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		product.CategoryID = &categoryID.UUID
	}
	product.Description = description.String
	product.Images = images
	return &product, nil
}

// Create inserts a product owned by the scope's dealer
func (r *productRepository) Create(ctx context.Context, scope tenant.Scope, product *domain.Product) error {
	if err := scope.Check(); err != nil {
		return err
	}
	product.DealerID = scope.DealerID()

	query := `
		INSERT INTO products (id, dealer_id, category_id, name, description, price, images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var categoryID interface{}
	if product.CategoryID != nil {
		categoryID = *product.CategoryID
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.DealerID,
		categoryID,
		product.Name,
		product.Description,
		product.Price,
		jsonArg(product.Images),
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// CreateVariant inserts a variant, provided its product belongs to the scope's dealer
func (r *productRepository) CreateVariant(ctx context.Context, scope tenant.Scope, variant *domain.ProductVariant) error {
	if err := scope.Check(); err != nil {
		return err
	}

	query := `
		INSERT INTO product_variants (id, product_id, name, sku, price, stock, is_active, created_at, updated_at)
		SELECT $1, p.id, $3, $4, $5, $6, $7, $8, $9
		FROM products p
		WHERE p.id = $2 AND p.dealer_id = $10
	`

	var price interface{}
	if variant.Price != nil {
		price = *variant.Price
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		variant.ID,
		variant.ProductID,
		variant.Name,
		variant.SKU,
		price,
		variant.Stock,
		variant.IsActive,
		variant.CreatedAt,
		variant.UpdatedAt,
		scope.DealerID(),
	)
	if err != nil {
		return fmt.Errorf("failed to create product variant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByIDs returns the requested products that belong to the scope's
// dealer, keyed by id. Ids owned by other dealers are simply absent.
func (r *productRepository) FindByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	products := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE dealer_id = $1 AND id = ANY($2::uuid[])
	`

	rows, err := r.db.QueryContext(ctx, query, scope.DealerID(), uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[product.ID] = product
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

const variantColumns = `v.id, v.product_id, v.name, v.sku, v.price, v.stock, v.is_active, v.created_at, v.updated_at`

func scanVariant(row rowScanner) (*domain.ProductVariant, error) {
	var (
		variant domain.ProductVariant
		sku     sql.NullString
		price   sql.NullFloat64
	)
	err := row.Scan(
		&variant.ID,
		&variant.ProductID,
		&variant.Name,
		&sku,
		&price,
		&variant.Stock,
		&variant.IsActive,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	variant.SKU = sku.String
	if price.Valid {
		p := price.Float64
		variant.Price = &p
	}
	return &variant, nil
}

func (r *productRepository) queryVariants(ctx context.Context, query string, args ...interface{}) ([]*domain.ProductVariant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find product variants: %w", err)
	}
	defer rows.Close()

	variants := []*domain.ProductVariant{}
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product variant: %w", err)
		}
		variants = append(variants, variant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product variants: %w", err)
	}

	return variants, nil
}

// FindVariantsByIDs returns the requested variants whose product belongs to
// the scope's dealer, keyed by id.
func (r *productRepository) FindVariantsByIDs(ctx context.Context, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]*domain.ProductVariant, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.ProductVariant, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	query := `
		SELECT ` + variantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.dealer_id = $1 AND v.id = ANY($2::uuid[])
	`

	variants, err := r.queryVariants(ctx, query, scope.DealerID(), uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		byID[v.ID] = v
	}
	return byID, nil
}

// ListVariants returns the active variants of the given products, grouped by
// product id and ordered by name.
func (r *productRepository) ListVariants(ctx context.Context, scope tenant.Scope, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.ProductVariant, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID][]*domain.ProductVariant, len(productIDs))
	if len(productIDs) == 0 {
		return byProduct, nil
	}

	query := `
		SELECT ` + variantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.dealer_id = $1 AND v.product_id = ANY($2::uuid[]) AND v.is_active
		ORDER BY v.name ASC
	`

	variants, err := r.queryVariants(ctx, query, scope.DealerID(), uuidStrings(productIDs))
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	return byProduct, nil
}

// List retrieves the dealer's products with optional category and text
// filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, scope tenant.Scope, filter ProductFilter) ([]*domain.Product, int, error) {
	if err := scope.Check(); err != nil {
		return nil, 0, err
	}

	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
	}

	sortBy := filter.SortBy
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	// Build the WHERE clause
	conditions := []string{"dealer_id = $1"}
	args := []interface{}{scope.DealerID()}
	argIndex := 2

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, argIndex, argIndex))
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		argIndex++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	// Count total products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
