package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tax is charged at a flat 10% of the item subtotal.
var taxRate = decimal.NewFromFloat(0.10)

// Shipping is free once the item subtotal strictly exceeds the threshold.
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingFee       = decimal.NewFromInt(10)
)

// LineItem is one priced cart line fed into the price computation.
type LineItem struct {
	ProductID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
}

// Breakdown holds the four price components of an order, each rounded to cents.
type Breakdown struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// ComputePrices derives the full price breakdown for a set of line items.
// It is pure: the input is never mutated and equal inputs give equal outputs.
// Each component is rounded to two decimals independently, so the total is
// the sum of the already-rounded parts.
func ComputePrices(items []LineItem) Breakdown {
	itemsPrice := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsPrice = itemsPrice.Add(line)
	}
	itemsPrice = itemsPrice.Round(2)

	taxPrice := itemsPrice.Mul(taxRate).Round(2)

	shippingPrice := flatShippingFee
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	totalPrice := itemsPrice.Add(taxPrice).Add(shippingPrice).Round(2)

	return Breakdown{
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    totalPrice,
	}
}
