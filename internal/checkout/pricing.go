package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

var (
	codRate = decimal.RequireFromString("0.05")
	hundred = decimal.NewFromInt(100)
)

// Summary is the order summary shown on the payment step.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	// Fee is the cash-on-delivery surcharge, rounded for display.
	Fee decimal.Decimal `json:"fee"`
	// Total is rounded to whole units for cash on delivery and left exact
	// for online payment.
	Total decimal.Decimal `json:"total"`
}

// Subtotal is the sum of price × quantity over the cart.
func Subtotal(items []orders.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Total is the unrounded amount due for method.
func Total(items []orders.CartItem, method orders.PaymentMethod) decimal.Decimal {
	sub := Subtotal(items)
	if method == orders.MethodCashOnDelivery {
		return sub.Add(sub.Mul(codRate))
	}
	return sub
}

func Summarize(items []orders.CartItem, method orders.PaymentMethod) Summary {
	sub := Subtotal(items)
	s := Summary{Subtotal: sub, Fee: decimal.Zero, Total: Total(items, method)}
	if method == orders.MethodCashOnDelivery {
		s.Fee = sub.Mul(codRate).Round(0)
		s.Total = s.Total.Round(0)
	}
	return s
}

// Subunits converts an amount to the gateway's minor units (paise, cents).
func Subunits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
