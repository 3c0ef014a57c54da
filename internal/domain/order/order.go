package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/shared"
)

// Order errors
var (
	ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
)

// Item is one purchased line of a marketplace order.
// ErpProductCode is resolved by the product mapping step and stays empty
// for items the tenant has not mapped yet.
type Item struct {
	ID                     uuid.UUID       `json:"id"`
	ProductName            string          `json:"product_name"`
	OptionName             string          `json:"option_name"`
	Quantity               int             `json:"quantity"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	TotalPrice             decimal.Decimal `json:"total_price"`
	ErpProductCode         string          `json:"erp_product_code"`
	CommissionRate         decimal.Decimal `json:"commission_rate"`
	CommissionAmount       decimal.Decimal `json:"commission_amount"`
	DeliveryCommissionAmt  decimal.Decimal `json:"delivery_commission_amount"`
}

// IsMapped reports whether the item has a resolved ERP product code
func (i Item) IsMapped() bool {
	return i.ErpProductCode != ""
}

// Order is the read model the document engine consumes. Orders are
// collected and reconciled by the marketplace sync pipeline; this
// service never mutates them.
type Order struct {
	shared.TenantEntity
	Marketplace        Marketplace
	MarketplaceOrderID string
	BuyerName          string
	ReceiverName       string
	OrderedAt          time.Time
	TotalAmount        decimal.Decimal
	DeliveryFee        decimal.Decimal
	Items              []Item
}

// MappedItems returns the items with a resolved ERP product code
func (o *Order) MappedItems() []Item {
	mapped := make([]Item, 0, len(o.Items))
	for _, item := range o.Items {
		if item.IsMapped() {
			mapped = append(mapped, item)
		}
	}
	return mapped
}

// TotalCommission returns the sum of sales commission amounts across items
func (o *Order) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.CommissionAmount)
	}
	return total
}

// TotalDeliveryCommission returns the sum of delivery commission amounts across items
func (o *Order) TotalDeliveryCommission() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.DeliveryCommissionAmt)
	}
	return total
}

// Repository provides read access to collected orders
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Order, error)
	FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID) ([]Order, error)
}
