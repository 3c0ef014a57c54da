package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// OrderModel is the persistence model for the Order read model. Orders
// are written by the marketplace sync pipeline; the document engine only
// reads them.
type OrderModel struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_orders_tenant_marketplace,priority:1"`
	Marketplace        order.Marketplace `gorm:"type:varchar(20);not null;index:idx_orders_tenant_marketplace,priority:2"`
	MarketplaceOrderID string            `gorm:"type:varchar(100);not null"`
	BuyerName          string            `gorm:"type:varchar(100)"`
	ReceiverName       string            `gorm:"type:varchar(100)"`
	OrderedAt          time.Time         `gorm:"not null;index"`
	TotalAmount        decimal.Decimal   `gorm:"type:numeric(15,2);not null"`
	DeliveryFee        decimal.Decimal   `gorm:"type:numeric(15,2);not null"`
	ItemsJSON          string            `gorm:"type:jsonb;column:items"`
	CreatedAt          time.Time         `gorm:"not null"`
	UpdatedAt          time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		TenantEntity: shared.TenantEntity{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			TenantID: m.TenantID,
		},
		Marketplace:        m.Marketplace,
		MarketplaceOrderID: m.MarketplaceOrderID,
		BuyerName:          m.BuyerName,
		ReceiverName:       m.ReceiverName,
		OrderedAt:          m.OrderedAt,
		TotalAmount:        m.TotalAmount,
		DeliveryFee:        m.DeliveryFee,
		Items:              make([]order.Item, 0),
	}

	unmarshalJSON(m.ItemsJSON, &o.Items)
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.TenantID = o.TenantID
	m.Marketplace = o.Marketplace
	m.MarketplaceOrderID = o.MarketplaceOrderID
	m.BuyerName = o.BuyerName
	m.ReceiverName = o.ReceiverName
	m.OrderedAt = o.OrderedAt
	m.TotalAmount = o.TotalAmount
	m.DeliveryFee = o.DeliveryFee
	m.ItemsJSON = marshalJSON(o.Items, "[]")
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
}
