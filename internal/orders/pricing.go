package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwave/mobile-core/pkg/enums"
	"github.com/shopwave/mobile-core/pkg/types"
)

// Delivery is free only when the subtotal strictly exceeds the threshold.
// A subtotal of exactly 500 still pays the fee.
var (
	freeDeliveryThreshold = decimal.NewFromInt(500)
	deliveryFee           = decimal.NewFromInt(50)
)

// ComputePricing derives the order pricing from the cart subtotal. There is
// no discount mechanism yet, so the discount line is always zero.
func ComputePricing(subtotal decimal.Decimal) types.OrderPricing {
	fee := deliveryFee
	if subtotal.GreaterThan(freeDeliveryThreshold) {
		fee = decimal.Zero
	}
	return types.OrderPricing{
		Subtotal:    subtotal,
		Discount:    decimal.Zero,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// NewPaymentInfo builds the synthetic payment record for a freshly placed
// order. Cash on delivery stays pending with a COD_ transaction id; every
// other method is recorded as an immediate success with a TXN_ id.
func NewPaymentInfo(method enums.PaymentMethod, total decimal.Decimal, now time.Time) types.PaymentInfo {
	info := types.PaymentInfo{
		Method: method,
		Amount: total,
	}
	if method == enums.PaymentMethodCOD {
		info.Status = enums.PaymentStatusPending
		info.TransactionID = fmt.Sprintf("COD_%d", now.UnixMilli())
		return info
	}
	info.Status = enums.PaymentStatusSuccess
	info.TransactionID = fmt.Sprintf("TXN_%d", now.UnixMilli())
	return info
}
