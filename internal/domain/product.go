package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item owned by a dealer
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	DealerID    uuid.UUID       `json:"dealer_id" db:"dealer_id"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       float64         `json:"price" db:"price"`
	Images      json.RawMessage `json:"-" db:"images"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ImageURLs decodes the stored image list. Anything that is not a JSON array
// of strings is treated as no images.
func (p *Product) ImageURLs() []string {
	urls := []string{}
	if len(p.Images) == 0 {
		return urls
	}
	var decoded []string
	if err := json.Unmarshal(p.Images, &decoded); err != nil {
		return urls
	}
	for _, u := range decoded {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ProductVariant is a sellable configuration of a product with its own stock.
type ProductVariant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	SKU       string    `json:"sku" db:"sku"`
	Price     *float64  `json:"price,omitempty" db:"price"`
	Stock     int       `json:"stock" db:"stock"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DealerID  uuid.UUID `json:"dealer_id" db:"dealer_id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
