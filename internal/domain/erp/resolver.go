package erp

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/order"
)

var templateVarPattern = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// ResolveContext carries the data a value source is resolved against.
// Item is set for per-item lines (product sale); Line is set only
// during global field mapping application, after the line's VAT split.
type ResolveContext struct {
	Order *order.Order
	Item  *order.Item
	Line  *DocumentLine
}

// SubstituteTemplateVars replaces every known {var} placeholder in the
// template with its value from the context. Unknown placeholders are
// left verbatim so a typo in a tenant's template shows up in the
// generated document instead of silently disappearing.
func SubstituteTemplateVars(template string, ctx ResolveContext) string {
	return templateVarPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := lookupTemplateVar(name, ctx)
		if !ok {
			return match
		}
		return value
	})
}

func lookupTemplateVar(name string, ctx ResolveContext) (string, bool) {
	switch name {
	case "orderId":
		if ctx.Order == nil {
			return "", true
		}
		return ctx.Order.ID.String(), true
	case "marketplaceOrderId":
		if ctx.Order == nil {
			return "", true
		}
		return ctx.Order.MarketplaceOrderID, true
	case "buyerName":
		if ctx.Order == nil {
			return "", true
		}
		return ctx.Order.BuyerName, true
	case "receiverName":
		if ctx.Order == nil {
			return "", true
		}
		return ctx.Order.ReceiverName, true
	case "marketplace":
		if ctx.Order == nil {
			return "", true
		}
		return ctx.Order.Marketplace.DisplayName(), true
	case "productName":
		if ctx.Item == nil {
			return "", true
		}
		return ctx.Item.ProductName, true
	case "optionName":
		if ctx.Item == nil {
			return "", true
		}
		return ctx.Item.OptionName, true
	}
	return "", false
}

// ResolveQuantity resolves a quantity source against the context.
// Missing upstream values resolve to zero.
func ResolveQuantity(source ValueSource, ctx ResolveContext) int {
	switch source {
	case ValueSourceFixed1:
		return 1
	case ValueSourceOrderQuantity:
		if ctx.Item != nil {
			return ctx.Item.Quantity
		}
		if ctx.Order != nil {
			total := 0
			for _, item := range ctx.Order.Items {
				total += item.Quantity
			}
			return total
		}
		return 0
	}
	return 0
}

// ResolvePrice resolves a price source against the context.
// Missing upstream values resolve to zero.
func ResolvePrice(source ValueSource, ctx ResolveContext) decimal.Decimal {
	switch source {
	case ValueSourceOrderTotalPrice:
		if ctx.Item != nil {
			return ctx.Item.TotalPrice
		}
		if ctx.Order != nil {
			return ctx.Order.TotalAmount
		}
	case ValueSourceOrderDeliveryFee:
		if ctx.Order != nil {
			return ctx.Order.DeliveryFee
		}
	case ValueSourceCommissionAmount:
		if ctx.Item != nil {
			return ctx.Item.CommissionAmount
		}
		if ctx.Order != nil {
			return ctx.Order.TotalCommission()
		}
	case ValueSourceDeliveryCommission:
		if ctx.Item != nil {
			return ctx.Item.DeliveryCommissionAmt
		}
		if ctx.Order != nil {
			return ctx.Order.TotalDeliveryCommission()
		}
	}
	return decimal.Zero
}

// ResolveFieldValue resolves a global field mapping's value source to
// the string written into the document line's extra fields. Numeric
// values are rendered in plain decimal notation.
func ResolveFieldValue(m GlobalFieldMapping, ctx ResolveContext) string {
	switch m.ValueSource {
	case ValueSourceFixed:
		return m.FixedValue
	case ValueSourceTemplate:
		return SubstituteTemplateVars(m.Template, ctx)
	case ValueSourceOrderID:
		if ctx.Order != nil {
			return ctx.Order.ID.String()
		}
	case ValueSourceMarketplaceOrderID:
		if ctx.Order != nil {
			return ctx.Order.MarketplaceOrderID
		}
	case ValueSourceBuyerName:
		if ctx.Order != nil {
			return ctx.Order.BuyerName
		}
	case ValueSourceReceiverName:
		if ctx.Order != nil {
			return ctx.Order.ReceiverName
		}
	case ValueSourceProductName:
		if ctx.Item != nil {
			return ctx.Item.ProductName
		}
	case ValueSourceOptionName:
		if ctx.Item != nil {
			return ctx.Item.OptionName
		}
	case ValueSourceUnitPriceVAT:
		if ctx.Line != nil {
			return ctx.Line.UnitPriceWithVAT().String()
		}
	case ValueSourceTotalAmount:
		if ctx.Line != nil {
			return ctx.Line.TotalPrice.String()
		}
	case ValueSourceSupplyAmount:
		if ctx.Line != nil {
			return ctx.Line.SupplyAmount.String()
		}
	case ValueSourceVATAmount:
		if ctx.Line != nil {
			return ctx.Line.VATAmount.String()
		}
	}
	return ""
}
