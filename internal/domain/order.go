package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a shop order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ShopOrder is a storefront order with denormalized totals.
type ShopOrder struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	DealerID        uuid.UUID       `json:"dealer_id" db:"dealer_id"`
	OrderNumber     string          `json:"order_number" db:"order_number"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerEmail   string          `json:"customer_email" db:"customer_email"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	Notes           string          `json:"notes" db:"notes"`
	Status          OrderStatus     `json:"status" db:"status"`
	Subtotal        float64         `json:"subtotal" db:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost" db:"shipping_cost"`
	Total           float64         `json:"total" db:"total"`
	Items           []ShopOrderItem `json:"items" db:"-"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ShopOrderItem snapshots the product and variant at the time of purchase.
type ShopOrderItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OrderID     uuid.UUID  `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID  `json:"product_id" db:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty" db:"variant_id"`
	ProductName string     `json:"product_name" db:"product_name"`
	VariantName string     `json:"variant_name,omitempty" db:"variant_name"`
	Quantity    int        `json:"quantity" db:"quantity"`
	UnitPrice   float64    `json:"unit_price" db:"unit_price"`
	Total       float64    `json:"total" db:"total"`
}
