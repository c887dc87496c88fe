// Package checkout validates the delivery address and turns the current cart
// into an order creation request.
package checkout

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopwave/mobile-core/internal/cart"
	"github.com/shopwave/mobile-core/internal/orders"
	"github.com/shopwave/mobile-core/pkg/api"
	"github.com/shopwave/mobile-core/pkg/enums"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/types"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

// CartSource is the slice of the cart store checkout reads from and clears on
// success.
type CartSource interface {
	State() cart.State
	ClearCart(ctx context.Context)
}

// OrderPlacer is the slice of the order store checkout submits to.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*types.Order, string, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart   CartSource
	Orders OrderPlacer
	Logger *logger.Logger
}

type Service struct {
	cart     CartSource
	orders   OrderPlacer
	logg     *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart source is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order placer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registering phone validator")
	}
	if err := validate.RegisterValidation("pincode6", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "registering pincode validator")
	}

	return &Service{
		cart:     params.Cart,
		orders:   params.Orders,
		logg:     params.Logger,
		validate: validate,
		now:      time.Now,
	}, nil
}

// ValidateAddress checks the delivery address against the field rules and
// returns a VALIDATION_ERROR carrying per-field messages.
func (s *Service) ValidateAddress(address types.DeliveryAddress) error {
	err := s.validate.Struct(address)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "address validation")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery address").
		WithDetails(formatValidationErrors(validationErrors))
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]
		switch fieldErr.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "phone10":
			details[field] = "must be a 10-digit mobile number starting with 6-9"
		case "pincode6":
			details[field] = "must be a 6-digit pincode"
		default:
			details[field] = "is invalid"
		}
	}
	return details
}

// PlaceOrder validates, prices and submits the current cart as an order,
// clearing the cart only after the backend accepts it.
func (s *Service) PlaceOrder(ctx context.Context, address types.DeliveryAddress, method enums.PaymentMethod, notes string) (*types.Order, error) {
	if err := s.ValidateAddress(address); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	cartState := s.cart.State()
	if len(cartState.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	pricing := orders.ComputePricing(cartState.TotalPrice)
	payment := orders.NewPaymentInfo(method, pricing.Total, s.now())

	order, orderID, err := s.orders.CreateOrder(ctx, api.CreateOrderRequest{
		Items:           cartState.Items,
		DeliveryAddress: address,
		PaymentInfo:     payment,
		Pricing:         pricing,
		OrderNotes:      notes,
	})
	if err != nil {
		return nil, err
	}

	s.cart.ClearCart(ctx)
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "checkout complete")
	return order, nil
}
