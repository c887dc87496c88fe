package types

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwave/mobile-core/pkg/enums"
)

// OrderItem is a snapshot taken at order creation, not a live reference to a
// catalog Product.
type OrderItem struct {
	ProductID  string            `json:"productId"`
	SKU        string            `json:"sku,omitempty"`
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Quantity   int               `json:"quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Image      string            `json:"image,omitempty"`
}

// DeliveryAddress carries the validation tags enforced before any order
// creation call leaves the device. phone10 and pincode6 are registered by the
// checkout service.
type DeliveryAddress struct {
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone10"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,pincode6"`
	Landmark string `json:"landmark,omitempty"`
}

// PaymentInfo is synthetic: no gateway is integrated. COD orders carry a
// pending status and a COD_ transaction id; every other method is recorded as
// an immediate success with a TXN_ id.
type PaymentInfo struct {
	Method        enums.PaymentMethod `json:"method"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID string              `json:"transactionId"`
	Amount        decimal.Decimal     `json:"amount"`
}

type OrderPricing struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

type TimelineEntry struct {
	Stage       string    `json:"stage"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order is immutable once created; status and timeline advance only through
// server-side updates observed by re-fetching.
type Order struct {
	ID                string            `json:"_id,omitempty"`
	OrderID           string            `json:"orderId"`
	UserID            string            `json:"userId"`
	CustomerInfo      CustomerInfo      `json:"customerInfo"`
	Items             []OrderItem       `json:"items"`
	DeliveryAddress   DeliveryAddress   `json:"deliveryAddress"`
	PaymentInfo       PaymentInfo       `json:"paymentInfo"`
	Pricing           OrderPricing      `json:"pricing"`
	Status            enums.OrderStatus `json:"status"`
	Timeline          []TimelineEntry   `json:"timeline,omitempty"`
	EstimatedDelivery time.Time         `json:"estimatedDelivery,omitzero"`
	OrderNotes        string            `json:"orderNotes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt,omitzero"`
	UpdatedAt         time.Time         `json:"updatedAt,omitzero"`
}
