package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNumberTaken  = errors.New("order number already taken")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// OrderRepository defines the interface for shop order data access
type OrderRepository interface {
	Create(ctx context.Context, scope tenant.Scope, order *domain.ShopOrder) error
	FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ShopOrder, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create persists the order and its items and takes the ordered quantities
// out of variant stock, all in one transaction. A variant that cannot cover
// its quantity rolls everything back with ErrInsufficientStock.
func (r *orderRepository) Create(ctx context.Context, scope tenant.Scope, order *domain.ShopOrder) error {
	if err := scope.Check(); err != nil {
		return err
	}
	order.DealerID = scope.DealerID()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO shop_orders (
			id, dealer_id, order_number, customer_name, customer_email, customer_phone,
			shipping_address, notes, status, subtotal, shipping_cost, total, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.DealerID,
		order.OrderNumber,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		nullString(order.ShippingAddress),
		nullString(order.Notes),
		order.Status,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "shop_orders_order_number_key") {
			return ErrOrderNumberTaken
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO shop_order_items (id, order_id, product_id, variant_id, product_name, variant_name, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	// The variant must still belong to a product of this dealer at write time.
	stockQuery := `
		UPDATE product_variants v
		SET stock = v.stock - $1
		FROM products p
		WHERE v.id = $2
		  AND v.product_id = $3
		  AND p.id = v.product_id
		  AND p.dealer_id = $4
		  AND v.stock >= $1
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		var variantID interface{}
		if item.VariantID != nil {
			variantID = *item.VariantID
		}

		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			variantID,
			item.ProductName,
			nullString(item.VariantName),
			item.Quantity,
			item.UnitPrice,
			item.Total,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		if item.VariantID == nil {
			continue
		}

		result, err := tx.ExecContext(ctx, stockQuery, item.Quantity, *item.VariantID, item.ProductID, order.DealerID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return ErrInsufficientStock
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID retrieves an order and its items
func (r *orderRepository) FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ShopOrder, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, order_number, customer_name, customer_email, customer_phone,
		       shipping_address, notes, status, subtotal, shipping_cost, total, created_at, updated_at
		FROM shop_orders
		WHERE id = $1 AND dealer_id = $2
	`

	var (
		order           domain.ShopOrder
		shippingAddress sql.NullString
		notes           sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id, scope.DealerID()).Scan(
		&order.ID,
		&order.DealerID,
		&order.OrderNumber,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&shippingAddress,
		&notes,
		&order.Status,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	order.ShippingAddress = shippingAddress.String
	order.Notes = notes.String

	itemsQuery := `
		SELECT id, order_id, product_id, variant_id, product_name, variant_name, quantity, unit_price, total
		FROM shop_order_items
		WHERE order_id = $1
		ORDER BY product_name ASC
	`

	rows, err := r.db.QueryContext(ctx, itemsQuery, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.ShopOrderItem{}
	for rows.Next() {
		var (
			item        domain.ShopOrderItem
			variantID   uuid.NullUUID
			variantName sql.NullString
		)
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&variantID,
			&item.ProductName,
			&variantName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if variantID.Valid {
			item.VariantID = &variantID.UUID
		}
		item.VariantName = variantName.String
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, nil
}
