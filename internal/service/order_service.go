package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/events"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds retries after an order number collision.
const maxOrderNumberAttempts = 5

// OrderLine is one requested cart line. UnitPrice is what the client saw; the
// charged price always comes from the catalog.
type OrderLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitPrice float64
}

// PlaceOrderInput is a storefront checkout request
type PlaceOrderInput struct {
	DealerSlug      string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Notes           string
	Items           []OrderLine
}

// OrderService defines order placement business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.ShopOrder, error)
}

type orderService struct {
	dealers   repository.DealerRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	publisher events.OrderPublisher
	logger    *zap.Logger

	now         func() time.Time
	orderNumber func(time.Time) string
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	dealers repository.DealerRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	publisher events.OrderPublisher,
	logger *zap.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &orderService{
		dealers:     dealers,
		products:    products,
		orders:      orders,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
		orderNumber: NewOrderNumber,
	}
}

var orderNumberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber formats ORD-<yyMMddHHmmss>-<6 random base32 characters>.
func NewOrderNumber(at time.Time) string {
	buf := make([]byte, 4)
	rand.Read(buf)
	suffix := orderNumberEncoding.EncodeToString(buf)[:6]
	return "ORD-" + at.UTC().Format("060102150405") + "-" + suffix
}

// roundMoney rounds to whole cents.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateOrderInput(input PlaceOrderInput) error {
	verr := &ValidationError{}

	if strings.TrimSpace(input.DealerSlug) == "" {
		verr.add("dealerSlug", "is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		verr.add("customerName", "is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		verr.add("customerPhone", "is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		verr.add("customerEmail", "is required")
	} else if _, err := mail.ParseAddress(input.CustomerEmail); err != nil {
		verr.add("customerEmail", "must be a valid email address")
	}
	if len(input.Items) == 0 {
		verr.add("items", "must contain at least one item")
	}
	for i, line := range input.Items {
		if line.ProductID == uuid.Nil {
			verr.add(fmt.Sprintf("items[%d].productId", i), "is required")
		}
		if line.Quantity < 1 {
			verr.add(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if line.UnitPrice < 0 {
			verr.add(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative")
		}
	}

	return verr.orNil()
}

// PlaceOrder validates the cart against the dealer's catalog, prices it from
// the catalog and stores it. Stock is taken atomically with the insert; no
// partial order is ever written.
func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.ShopOrder, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	dealer, err := s.dealers.FindBySlug(ctx, strings.TrimSpace(input.DealerSlug))
	if err != nil {
		if errors.Is(err, repository.ErrDealerNotFound) {
			return nil, ErrDealerUnavailable
		}
		return nil, fmt.Errorf("failed to find dealer: %w", err)
	}
	if !dealer.IsActive {
		return nil, ErrDealerUnavailable
	}

	scope, err := tenant.NewScope(dealer.ID)
	if err != nil {
		return nil, err
	}

	productIDs, variantIDs := collectIDs(input.Items)

	products, err := s.products.FindByIDs(ctx, scope, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	variants, err := s.products.FindVariantsByIDs(ctx, scope, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load product variants: %w", err)
	}

	now := s.now().UTC()
	order := &domain.ShopOrder{
		ID:              uuid.New(),
		DealerID:        dealer.ID,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Notes:           strings.TrimSpace(input.Notes),
		Status:          domain.OrderStatusPending,
		ShippingCost:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	requested := make(map[uuid.UUID]int)
	var subtotal float64

	for _, line := range input.Items {
		product, ok := products[line.ProductID]
		if !ok || !product.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
		}

		unitPrice := product.Price
		item := domain.ShopOrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
		}

		if line.VariantID != nil {
			variant, ok := variants[*line.VariantID]
			if !ok || !variant.IsActive || variant.ProductID != product.ID {
				return nil, fmt.Errorf("%w: %s", ErrVariantUnavailable, *line.VariantID)
			}

			requested[variant.ID] += line.Quantity
			if variant.Stock < requested[variant.ID] {
				return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, variant.Name)
			}

			if variant.Price != nil {
				unitPrice = *variant.Price
			}
			variantID := variant.ID
			item.VariantID = &variantID
			item.VariantName = variant.Name
		}

		unitPrice = roundMoney(unitPrice)
		if roundMoney(line.UnitPrice) != unitPrice {
			s.logger.Info("Client price differs from catalog price",
				zap.String("product_id", product.ID.String()),
				zap.Float64("client_price", line.UnitPrice),
				zap.Float64("catalog_price", unitPrice),
			)
		}

		item.UnitPrice = unitPrice
		item.Total = roundMoney(unitPrice * float64(line.Quantity))
		subtotal += item.Total
		order.Items = append(order.Items, item)
	}

	order.Subtotal = roundMoney(subtotal)
	order.Total = roundMoney(order.Subtotal + order.ShippingCost)

	if err := s.persist(ctx, scope, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("dealer_id", dealer.ID.String()),
		zap.Float64("total", order.Total),
	)

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Warn("Failed to publish order created event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	return order, nil
}

// persist stores the order, drawing a fresh order number on collisions.
func (s *orderService) persist(ctx context.Context, scope tenant.Scope, order *domain.ShopOrder) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.orderNumber(order.CreatedAt)

		err := s.orders.Create(ctx, scope, order)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrOrderNumberTaken):
			s.logger.Warn("Order number collision, retrying",
				zap.String("order_number", order.OrderNumber),
				zap.Int("attempt", attempt),
			)
			continue
		case errors.Is(err, repository.ErrInsufficientStock):
			return ErrInsufficientStock
		default:
			return fmt.Errorf("failed to create order: %w", err)
		}
	}

	return fmt.Errorf("failed to allocate a unique order number after %d attempts", maxOrderNumberAttempts)
}

func collectIDs(lines []OrderLine) (productIDs, variantIDs []uuid.UUID) {
	seenProducts := make(map[uuid.UUID]bool)
	seenVariants := make(map[uuid.UUID]bool)
	for _, line := range lines {
		if !seenProducts[line.ProductID] {
			seenProducts[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID)
		}
		if line.VariantID != nil && !seenVariants[*line.VariantID] {
			seenVariants[*line.VariantID] = true
			variantIDs = append(variantIDs, *line.VariantID)
		}
	}
	return productIDs, variantIDs
}
