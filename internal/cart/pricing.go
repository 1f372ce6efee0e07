package cart

import (
	"fmt"
	"math"
	"strings"
)

// Shipping thresholds, in currency units.
const (
	freeShippingMinimum = 500
	flatShippingCost    = 50
)

// PromoKind selects how a promo's magnitude is interpreted.
type PromoKind string

const (
	PromoPercentage  PromoKind = "percentage"
	PromoFixedAmount PromoKind = "fixedAmount"
)

// Promo is a discount rule. Magnitude is a fraction for percentage promos
// (0.10 = 10%) and a currency amount for fixed promos. MinOrderAmount of
// zero means no minimum; ItemType of "" means the whole cart qualifies.
type Promo struct {
	Code           string
	Kind           PromoKind
	Magnitude      float64
	MinOrderAmount float64
	ItemType       string
}

// promoRegistry is the fixed set of redeemable codes.
var promoRegistry = map[string]Promo{
	"WELCOME10": {Code: "WELCOME10", Kind: PromoPercentage, Magnitude: 0.10},
	"SAVE50":    {Code: "SAVE50", Kind: PromoFixedAmount, Magnitude: 50, MinOrderAmount: 300},
	"GIFT20":    {Code: "GIFT20", Kind: PromoPercentage, Magnitude: 0.20, MinOrderAmount: 1000},
	"MUGLOVE":   {Code: "MUGLOVE", Kind: PromoFixedAmount, Magnitude: 30, ItemType: "mug"},
}

// ApplyPromo validates the code against the registry and the cart's current
// subtotal, then attaches it. At most one promo is applied at a time; a
// successful apply replaces the previous one.
func (c *Cart) ApplyPromo(code string) error {
	promo, ok := promoRegistry[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return fmt.Errorf("promo code %q is not valid", strings.TrimSpace(code))
	}
	if total := c.Total(); promo.MinOrderAmount > 0 && total < promo.MinOrderAmount {
		return fmt.Errorf("promo code %s requires a minimum order of %.0f", promo.Code, promo.MinOrderAmount)
	}

	c.promo = &promo
	return nil
}

// ClearPromo removes the applied promo, if any.
func (c *Cart) ClearPromo() {
	c.promo = nil
}

// AppliedPromo returns the active promo or nil.
func (c *Cart) AppliedPromo() *Promo {
	return c.promo
}

// ShippingCost is zero at or above the free-shipping minimum, otherwise the
// flat rate.
func ShippingCost(total float64) float64 {
	if total >= freeShippingMinimum {
		return 0
	}
	return flatShippingCost
}

// Discount computes the promo's value against the cart. It is zero when no
// promo is applied or the minimum order is no longer met; percentage promos
// round to the nearest unit and fixed promos never exceed their base.
func Discount(c *Cart, promo *Promo) float64 {
	if promo == nil {
		return 0
	}
	total := c.Total()
	if promo.MinOrderAmount > 0 && total < promo.MinOrderAmount {
		return 0
	}

	base := total
	if promo.ItemType != "" {
		base = 0
		for _, item := range c.Items() {
			if item.ItemType == promo.ItemType {
				base += item.UnitPrice * float64(item.Quantity)
			}
		}
	}

	switch promo.Kind {
	case PromoPercentage:
		return math.Round(base * promo.Magnitude)
	case PromoFixedAmount:
		return math.Min(promo.Magnitude, base)
	default:
		return 0
	}
}

// Summary is the checkout arithmetic derived from the cart's current state.
type Summary struct {
	Subtotal   float64 `json:"subtotal"`
	Discount   float64 `json:"discount"`
	Shipping   float64 `json:"shipping"`
	FinalTotal float64 `json:"finalTotal"`
	PromoCode  string  `json:"promoCode,omitempty"`
	Count      int     `json:"count"`
}

// Summarize recomputes subtotal, discount, shipping and final total from the
// current rows. The final total is never negative.
func (c *Cart) Summarize() Summary {
	subtotal := c.Total()
	discount := Discount(c, c.promo)
	shipping := 0.0
	if c.UniqueItems() > 0 {
		shipping = ShippingCost(subtotal)
	}

	summary := Summary{
		Subtotal:   subtotal,
		Discount:   discount,
		Shipping:   shipping,
		FinalTotal: math.Max(0, subtotal-discount+shipping),
		Count:      c.Count(),
	}
	if c.promo != nil {
		summary.PromoCode = c.promo.Code
	}
	return summary
}
