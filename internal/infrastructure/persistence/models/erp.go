package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// SalesTemplateModel is the persistence model for the SalesTemplate aggregate.
// Line slots, headers, additional lines and global mappings live in jsonb
// columns; the template is always read and written as a whole.
type SalesTemplateModel struct {
	ID                     uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_erp_templates_config,priority:1;index:idx_erp_templates_tenant_active,priority:1"`
	ErpConfigID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_erp_templates_config,priority:2"`
	IsActive               bool      `gorm:"not null;default:true;index:idx_erp_templates_tenant_active,priority:2"`
	DefaultHeaderJSON      string    `gorm:"type:jsonb;column:default_header"`
	MarketplaceHeadersJSON string    `gorm:"type:jsonb;column:marketplace_headers"`
	ProductSaleJSON        string    `gorm:"type:jsonb;column:product_sale"`
	DeliveryFeeJSON        string    `gorm:"type:jsonb;column:delivery_fee"`
	SalesCommissionJSON    string    `gorm:"type:jsonb;column:sales_commission"`
	DeliveryCommissionJSON string    `gorm:"type:jsonb;column:delivery_commission"`
	AdditionalLinesJSON    string    `gorm:"type:jsonb;column:additional_lines"`
	GlobalMappingsJSON     string    `gorm:"type:jsonb;column:global_mappings"`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesTemplateModel) TableName() string {
	return "erp_sales_templates"
}

// ToDomain converts the persistence model to a domain SalesTemplate
func (m *SalesTemplateModel) ToDomain() *erp.SalesTemplate {
	t := &erp.SalesTemplate{
		TenantEntity: shared.TenantEntity{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			TenantID: m.TenantID,
		},
		ErpConfigID:        m.ErpConfigID,
		IsActive:           m.IsActive,
		DefaultHeader:      make(map[string]string),
		MarketplaceHeaders: make(map[order.Marketplace]map[string]string),
		AdditionalLines:    make([]erp.AdditionalLineTemplate, 0),
		GlobalMappings:     make([]erp.GlobalFieldMapping, 0),
	}

	unmarshalJSON(m.DefaultHeaderJSON, &t.DefaultHeader)
	unmarshalJSON(m.MarketplaceHeadersJSON, &t.MarketplaceHeaders)
	unmarshalJSON(m.ProductSaleJSON, &t.ProductSale)
	unmarshalJSON(m.DeliveryFeeJSON, &t.DeliveryFee)
	unmarshalJSON(m.SalesCommissionJSON, &t.SalesCommission)
	unmarshalJSON(m.DeliveryCommissionJSON, &t.DeliveryCommission)
	unmarshalJSON(m.AdditionalLinesJSON, &t.AdditionalLines)
	unmarshalJSON(m.GlobalMappingsJSON, &t.GlobalMappings)

	return t
}

// FromDomain populates the persistence model from a domain SalesTemplate
func (m *SalesTemplateModel) FromDomain(t *erp.SalesTemplate) {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.ErpConfigID = t.ErpConfigID
	m.IsActive = t.IsActive
	m.DefaultHeaderJSON = marshalJSON(t.DefaultHeader, "{}")
	m.MarketplaceHeadersJSON = marshalJSON(t.MarketplaceHeaders, "{}")
	m.ProductSaleJSON = marshalJSON(t.ProductSale, "{}")
	m.DeliveryFeeJSON = marshalJSON(t.DeliveryFee, "{}")
	m.SalesCommissionJSON = marshalJSON(t.SalesCommission, "{}")
	m.DeliveryCommissionJSON = marshalJSON(t.DeliveryCommission, "{}")
	m.AdditionalLinesJSON = marshalJSON(t.AdditionalLines, "[]")
	m.GlobalMappingsJSON = marshalJSON(t.GlobalMappings, "[]")
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// SalesTemplateModelFromDomain creates a new persistence model from a domain SalesTemplate
func SalesTemplateModelFromDomain(t *erp.SalesTemplate) *SalesTemplateModel {
	m := &SalesTemplateModel{}
	m.FromDomain(t)
	return m
}

// SalesDocumentModel is the persistence model for the SalesDocument aggregate.
// The partial unique index ux_erp_documents_active_order makes the
// one-active-document-per-order rule an atomic insert-time check: a
// concurrent duplicate generate loses with a unique violation instead
// of slipping past a read-then-write race.
type SalesDocumentModel struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_erp_documents_active_order,priority:1;index:idx_erp_documents_tenant_status,priority:1"`
	OrderID            uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_erp_documents_active_order,priority:2,where:status <> 'CANCELLED'"`
	MarketplaceOrderID string             `gorm:"type:varchar(100);not null"`
	Marketplace        order.Marketplace  `gorm:"type:varchar(20);not null"`
	Status             erp.DocumentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_erp_documents_tenant_status,priority:2"`
	DocumentDate       time.Time          `gorm:"not null"`
	CustomerCode       string             `gorm:"type:varchar(50)"`
	CustomerName       string             `gorm:"type:varchar(255)"`
	TotalAmount        decimal.Decimal    `gorm:"type:numeric(15,2);not null"`
	LinesJSON          string             `gorm:"type:jsonb;column:document_lines"`
	ErpDocumentID      *string            `gorm:"type:varchar(100)"`
	SentAt             *time.Time
	ErrorMessage       string             `gorm:"type:text"`
	CreatedAt          time.Time          `gorm:"not null"`
	UpdatedAt          time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesDocumentModel) TableName() string {
	return "erp_sales_documents"
}

// ToDomain converts the persistence model to a domain SalesDocument
func (m *SalesDocumentModel) ToDomain() *erp.SalesDocument {
	doc := &erp.SalesDocument{
		TenantEntity: shared.TenantEntity{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			TenantID: m.TenantID,
		},
		OrderID:            m.OrderID,
		MarketplaceOrderID: m.MarketplaceOrderID,
		Marketplace:        m.Marketplace,
		Status:             m.Status,
		DocumentDate:       m.DocumentDate,
		CustomerCode:       m.CustomerCode,
		CustomerName:       m.CustomerName,
		TotalAmount:        m.TotalAmount,
		Lines:              make([]erp.DocumentLine, 0),
		ErpDocumentID:      m.ErpDocumentID,
		SentAt:             m.SentAt,
		ErrorMessage:       m.ErrorMessage,
	}

	unmarshalJSON(m.LinesJSON, &doc.Lines)
	return doc
}

// FromDomain populates the persistence model from a domain SalesDocument
func (m *SalesDocumentModel) FromDomain(doc *erp.SalesDocument) {
	m.ID = doc.ID
	m.TenantID = doc.TenantID
	m.OrderID = doc.OrderID
	m.MarketplaceOrderID = doc.MarketplaceOrderID
	m.Marketplace = doc.Marketplace
	m.Status = doc.Status
	m.DocumentDate = doc.DocumentDate
	m.CustomerCode = doc.CustomerCode
	m.CustomerName = doc.CustomerName
	m.TotalAmount = doc.TotalAmount
	m.LinesJSON = marshalJSON(doc.Lines, "[]")
	m.ErpDocumentID = doc.ErpDocumentID
	m.SentAt = doc.SentAt
	m.ErrorMessage = doc.ErrorMessage
	m.CreatedAt = doc.CreatedAt
	m.UpdatedAt = doc.UpdatedAt
}

// SalesDocumentModelFromDomain creates a new persistence model from a domain SalesDocument
func SalesDocumentModelFromDomain(doc *erp.SalesDocument) *SalesDocumentModel {
	m := &SalesDocumentModel{}
	m.FromDomain(doc)
	return m
}

// ErpConnectionModel is the persistence model for a tenant's ECount
// connection credentials. Rows are provisioned by tenant onboarding;
// this service only reads them, the sender resolves the active row at
// send time.
type ErpConnectionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index:idx_erp_connections_tenant_active,priority:1"`
	ComCode       string    `gorm:"type:varchar(20);not null"`
	UserID        string    `gorm:"type:varchar(100);not null"`
	APICertKey    string    `gorm:"type:varchar(255);not null"`
	WarehouseCode string    `gorm:"type:varchar(50)"`
	IsActive      bool      `gorm:"not null;default:true;index:idx_erp_connections_tenant_active,priority:2"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ErpConnectionModel) TableName() string {
	return "erp_connections"
}

// ToDomain converts the persistence model to a domain Connection
func (m *ErpConnectionModel) ToDomain() *erp.Connection {
	return &erp.Connection{
		TenantEntity: shared.TenantEntity{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			TenantID: m.TenantID,
		},
		ComCode:       m.ComCode,
		UserID:        m.UserID,
		APICertKey:    m.APICertKey,
		WarehouseCode: m.WarehouseCode,
		IsActive:      m.IsActive,
	}
}

func marshalJSON(v any, empty string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return empty
	}
	return string(data)
}

func unmarshalJSON(data string, v any) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), v)
}
