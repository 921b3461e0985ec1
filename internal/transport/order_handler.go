package transport

import (
	"net/http"

	"academy-platform/internal/middleware"
	"academy-platform/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one cart line of a checkout
type OrderItemRequest struct {
	ProductID string  `json:"productId" validate:"required,uuid"`
	VariantID *string `json:"variantId" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity" validate:"min=1,max=1000"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

// CreateOrderRequest represents the checkout payload
type CreateOrderRequest struct {
	DealerSlug      string             `json:"dealerSlug" validate:"required,max=100"`
	CustomerName    string             `json:"customerName" validate:"required,max=255"`
	CustomerEmail   string             `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone   string             `json:"customerPhone" validate:"required,max=50"`
	ShippingAddress string             `json:"shippingAddress" validate:"max=1000"`
	Notes           string             `json:"notes" validate:"max=2000"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// CreateOrderResponse is returned once the order is stored
type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"orderNumber"`
	OrderID     string `json:"orderId"`
}

// OrderHandler handles storefront checkout
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers order routes behind the given rate limiter
func (h *OrderHandler) RegisterRoutes(r chi.Router, rateLimit func(http.Handler) http.Handler) {
	r.With(rateLimit).Post("/api/shop/orders", h.CreateOrder)
}

// CreateOrder places a storefront order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	input := service.PlaceOrderInput{
		DealerSlug:      req.DealerSlug,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		Items:           make([]service.OrderLine, 0, len(req.Items)),
	}

	// Formats were checked by the validator above.
	for _, item := range req.Items {
		line := service.OrderLine{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if item.VariantID != nil {
			variantID := uuid.MustParse(*item.VariantID)
			line.VariantID = &variantID
		}
		input.Items = append(input.Items, line)
	}

	order, err := h.orders.PlaceOrder(r.Context(), input)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Order placement")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, CreateOrderResponse{
		Success:     true,
		OrderNumber: order.OrderNumber,
		OrderID:     order.ID.String(),
	})
}
