package erp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
)

// ---------------------------------------------------------------------------
// Document DTOs
// ---------------------------------------------------------------------------

// DocumentLineResponse represents one generated line in API responses
type DocumentLineResponse struct {
	LineNo        int               `json:"line_no"`
	Role          erp.LineRole      `json:"role"`
	ProductCode   string            `json:"product_code"`
	Description   string            `json:"description"`
	WarehouseCode string            `json:"warehouse_code,omitempty"`
	Quantity      int               `json:"quantity"`
	SupplyAmount  decimal.Decimal   `json:"supply_amount"`
	VATAmount     decimal.Decimal   `json:"vat_amount"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Remarks       string            `json:"remarks,omitempty"`
	ExtraFields   map[string]string `json:"extra_fields,omitempty"`
}

// DocumentResponse represents a sales document in API responses
type DocumentResponse struct {
	ID                 uuid.UUID              `json:"id"`
	TenantID           uuid.UUID              `json:"tenant_id"`
	OrderID            uuid.UUID              `json:"order_id"`
	MarketplaceOrderID string                 `json:"marketplace_order_id"`
	Marketplace        order.Marketplace      `json:"marketplace"`
	MarketplaceName    string                 `json:"marketplace_name"`
	Status             erp.DocumentStatus     `json:"status"`
	DocumentDate       time.Time              `json:"document_date"`
	CustomerCode       string                 `json:"customer_code"`
	CustomerName       string                 `json:"customer_name"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	Lines              []DocumentLineResponse `json:"lines"`
	ErpDocumentID      *string                `json:"erp_document_id,omitempty"`
	SentAt             *time.Time             `json:"sent_at,omitempty"`
	ErrorMessage       string                 `json:"error_message,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// DocumentListResponse represents a sales document in list responses (lighter)
type DocumentListResponse struct {
	ID                 uuid.UUID          `json:"id"`
	OrderID            uuid.UUID          `json:"order_id"`
	MarketplaceOrderID string             `json:"marketplace_order_id"`
	Marketplace        order.Marketplace  `json:"marketplace"`
	MarketplaceName    string             `json:"marketplace_name"`
	Status             erp.DocumentStatus `json:"status"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	LineCount          int                `json:"line_count"`
	ErpDocumentID      *string            `json:"erp_document_id,omitempty"`
	SentAt             *time.Time         `json:"sent_at,omitempty"`
	ErrorMessage       string             `json:"error_message,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// PreviewResponse carries the result of a dry-run generation. Nothing is
// persisted, the lines show what a generate call would produce right now.
type PreviewResponse struct {
	OrderID      uuid.UUID              `json:"order_id"`
	CustomerCode string                 `json:"customer_code"`
	CustomerName string                 `json:"customer_name"`
	Lines        []DocumentLineResponse `json:"lines"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Warnings     []string               `json:"warnings,omitempty"`
}

// GenerateResult bundles a freshly generated document with the non-fatal
// warnings collected while building its lines.
type GenerateResult struct {
	Document *erp.SalesDocument
	Warnings []string
}

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// GenerateBatchRequest represents a request to generate documents for many orders
type GenerateBatchRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,max=100"`
}

// SendSelectedRequest represents a request to send a chosen set of documents
type SendSelectedRequest struct {
	DocumentIDs []uuid.UUID `json:"documentIds" validate:"required,min=1,max=100"`
}

// DocumentListFilter represents filter options for listing documents
type DocumentListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ToDomainFilter converts a list filter to the domain filter
func (f DocumentListFilter) ToDomainFilter() erp.DocumentFilter {
	filter := erp.DocumentFilter{
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.Status != "" {
		status := erp.DocumentStatus(f.Status)
		if status.IsValid() {
			filter.Status = &status
		}
	}
	return filter
}

// ---------------------------------------------------------------------------
// Batch DTOs
// ---------------------------------------------------------------------------

// BatchItemResult represents the outcome for one item of a batch operation
type BatchItemResult struct {
	OrderID    uuid.UUID          `json:"order_id,omitempty"`
	DocumentID uuid.UUID          `json:"document_id,omitempty"`
	Status     erp.DocumentStatus `json:"status,omitempty"`
	Success    bool               `json:"success"`
	Warnings   []string           `json:"warnings,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// BatchResult aggregates per-item outcomes of a batch operation.
// Every input id yields exactly one entry in Results.
type BatchResult struct {
	Results      []BatchItemResult `json:"results"`
	SuccessCount int               `json:"success_count"`
	FailCount    int               `json:"fail_count"`
}

func newBatchResult(results []BatchItemResult) *BatchResult {
	r := &BatchResult{Results: results}
	for _, item := range results {
		if item.Success {
			r.SuccessCount++
		} else {
			r.FailCount++
		}
	}
	return r
}

// ---------------------------------------------------------------------------
// Template DTOs
// ---------------------------------------------------------------------------

// SaveSalesTemplateRequest fully replaces the sales template of one ERP
// connection. When Preset names a non-custom preset the four canonical
// line slots are taken from the preset and the slot fields are ignored.
type SaveSalesTemplateRequest struct {
	IsActive           bool                           `json:"is_active"`
	Preset             string                         `json:"preset,omitempty"`
	DefaultHeader      map[string]string              `json:"default_header"`
	MarketplaceHeaders map[string]map[string]string   `json:"marketplace_headers,omitempty"`
	ProductSale        erp.SalesLineTemplate          `json:"product_sale"`
	DeliveryFee        erp.SalesLineTemplate          `json:"delivery_fee"`
	SalesCommission    erp.SalesLineTemplate          `json:"sales_commission"`
	DeliveryCommission erp.SalesLineTemplate          `json:"delivery_commission"`
	AdditionalLines    []erp.AdditionalLineTemplate   `json:"additional_lines,omitempty"`
	GlobalMappings     []erp.GlobalFieldMapping       `json:"global_mappings,omitempty"`
}

// SalesTemplateResponse represents a sales template in API responses
type SalesTemplateResponse struct {
	ID                 uuid.UUID                               `json:"id"`
	TenantID           uuid.UUID                               `json:"tenant_id"`
	ErpConfigID        uuid.UUID                               `json:"erp_config_id"`
	IsActive           bool                                    `json:"is_active"`
	DetectedPreset     erp.PresetID                            `json:"detected_preset"`
	DefaultHeader      map[string]string                       `json:"default_header"`
	MarketplaceHeaders map[order.Marketplace]map[string]string `json:"marketplace_headers,omitempty"`
	ProductSale        erp.SalesLineTemplate                   `json:"product_sale"`
	DeliveryFee        erp.SalesLineTemplate                   `json:"delivery_fee"`
	SalesCommission    erp.SalesLineTemplate                   `json:"sales_commission"`
	DeliveryCommission erp.SalesLineTemplate                   `json:"delivery_commission"`
	AdditionalLines    []erp.AdditionalLineTemplate            `json:"additional_lines"`
	GlobalMappings     []erp.GlobalFieldMapping                `json:"global_mappings"`
	CreatedAt          time.Time                               `json:"created_at"`
	UpdatedAt          time.Time                               `json:"updated_at"`
}

// ---------------------------------------------------------------------------
// Conversion functions
// ---------------------------------------------------------------------------

// ToDocumentLineResponse converts a domain DocumentLine to a response DTO
func ToDocumentLineResponse(line erp.DocumentLine) DocumentLineResponse {
	return DocumentLineResponse{
		LineNo:        line.LineNo,
		Role:          line.Role,
		ProductCode:   line.ProductCode,
		Description:   line.Description,
		WarehouseCode: line.WarehouseCode,
		Quantity:      line.Quantity,
		SupplyAmount:  line.SupplyAmount,
		VATAmount:     line.VATAmount,
		TotalPrice:    line.TotalPrice,
		Remarks:       line.Remarks,
		ExtraFields:   line.ExtraFields,
	}
}

// ToDocumentLineResponses converts domain lines to response DTOs
func ToDocumentLineResponses(lines []erp.DocumentLine) []DocumentLineResponse {
	responses := make([]DocumentLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToDocumentLineResponse(line)
	}
	return responses
}

// ToDocumentResponse converts a domain SalesDocument to a response DTO
func ToDocumentResponse(doc *erp.SalesDocument) DocumentResponse {
	return DocumentResponse{
		ID:                 doc.ID,
		TenantID:           doc.TenantID,
		OrderID:            doc.OrderID,
		MarketplaceOrderID: doc.MarketplaceOrderID,
		Marketplace:        doc.Marketplace,
		MarketplaceName:    doc.Marketplace.DisplayName(),
		Status:             doc.Status,
		DocumentDate:       doc.DocumentDate,
		CustomerCode:       doc.CustomerCode,
		CustomerName:       doc.CustomerName,
		TotalAmount:        doc.TotalAmount,
		Lines:              ToDocumentLineResponses(doc.Lines),
		ErpDocumentID:      doc.ErpDocumentID,
		SentAt:             doc.SentAt,
		ErrorMessage:       doc.ErrorMessage,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

// ToDocumentListResponse converts a domain SalesDocument to a list response DTO
func ToDocumentListResponse(doc *erp.SalesDocument) DocumentListResponse {
	return DocumentListResponse{
		ID:                 doc.ID,
		OrderID:            doc.OrderID,
		MarketplaceOrderID: doc.MarketplaceOrderID,
		Marketplace:        doc.Marketplace,
		MarketplaceName:    doc.Marketplace.DisplayName(),
		Status:             doc.Status,
		TotalAmount:        doc.TotalAmount,
		LineCount:          len(doc.Lines),
		ErpDocumentID:      doc.ErpDocumentID,
		SentAt:             doc.SentAt,
		ErrorMessage:       doc.ErrorMessage,
		CreatedAt:          doc.CreatedAt,
	}
}

// ToDocumentListResponses converts a slice of domain documents to list response DTOs
func ToDocumentListResponses(docs []erp.SalesDocument) []DocumentListResponse {
	responses := make([]DocumentListResponse, len(docs))
	for i := range docs {
		responses[i] = ToDocumentListResponse(&docs[i])
	}
	return responses
}

// ToSalesTemplateResponse converts a domain SalesTemplate to a response DTO
func ToSalesTemplateResponse(t *erp.SalesTemplate) SalesTemplateResponse {
	return SalesTemplateResponse{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		ErpConfigID:        t.ErpConfigID,
		IsActive:           t.IsActive,
		DetectedPreset:     erp.DetectPreset(t),
		DefaultHeader:      t.DefaultHeader,
		MarketplaceHeaders: t.MarketplaceHeaders,
		ProductSale:        t.ProductSale,
		DeliveryFee:        t.DeliveryFee,
		SalesCommission:    t.SalesCommission,
		DeliveryCommission: t.DeliveryCommission,
		AdditionalLines:    t.AdditionalLines,
		GlobalMappings:     t.GlobalMappings,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
