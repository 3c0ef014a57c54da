package erp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// Document errors
var (
	ErrDocumentNotFound      = shared.NewDomainError("DOCUMENT_NOT_FOUND", "Sales document not found")
	ErrDocumentAlreadyExists = shared.NewDomainError("DOCUMENT_EXISTS", "Order already has an active sales document")
	ErrNoDocumentLines       = shared.NewDomainError("GENERATION_EMPTY", "Document generation produced no lines")
)

// DocumentStatus represents the lifecycle state of a sales document
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusSent      DocumentStatus = "SENT"
	DocumentStatusFailed    DocumentStatus = "FAILED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusSent, DocumentStatusFailed, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s DocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case DocumentStatusPending:
		return target == DocumentStatusSent || target == DocumentStatusFailed || target == DocumentStatusCancelled
	case DocumentStatusFailed:
		return target == DocumentStatusSent || target == DocumentStatusFailed || target == DocumentStatusCancelled
	case DocumentStatusSent, DocumentStatusCancelled:
		return false // Terminal states
	}
	return false
}

// DocumentLine is one line of a generated sales document. Lines are
// embedded in their document and rewritten wholesale on regeneration.
type DocumentLine struct {
	LineNo        int               `json:"line_no"`
	Role          LineRole          `json:"role"`
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

// UnitPriceWithVAT returns the VAT-inclusive price per unit
func (l DocumentLine) UnitPriceWithVAT() decimal.Decimal {
	if l.Quantity <= 1 {
		return l.TotalPrice
	}
	return l.TotalPrice.Div(decimal.NewFromInt(int64(l.Quantity))).Round(0)
}

// SetExtraField attaches a named extra field to the line
func (l *DocumentLine) SetExtraField(name, value string) {
	if l.ExtraFields == nil {
		l.ExtraFields = make(map[string]string)
	}
	l.ExtraFields[name] = value
}

// SalesDocument is one generation attempt of accounting lines for an
// order. At most one non-cancelled document exists per order; the
// constraint is enforced atomically at the persistence layer.
type SalesDocument struct {
	shared.TenantEntity
	OrderID            uuid.UUID
	MarketplaceOrderID string
	Marketplace        order.Marketplace
	Status             DocumentStatus
	DocumentDate       time.Time
	CustomerCode       string
	CustomerName       string
	TotalAmount        decimal.Decimal
	Lines              []DocumentLine
	ErpDocumentID      *string
	SentAt             *time.Time
	ErrorMessage       string
}

// NewSalesDocument creates a PENDING document from a build result
func NewSalesDocument(tenantID uuid.UUID, o *order.Order, customerCode, customerName string, lines []DocumentLine, totalAmount decimal.Decimal) *SalesDocument {
	return &SalesDocument{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		OrderID:            o.ID,
		MarketplaceOrderID: o.MarketplaceOrderID,
		Marketplace:        o.Marketplace,
		Status:             DocumentStatusPending,
		DocumentDate:       o.OrderedAt,
		CustomerCode:       customerCode,
		CustomerName:       customerName,
		TotalAmount:        totalAmount,
		Lines:              lines,
	}
}

// CanSend reports whether the document may be handed to the ERP sender
func (d *SalesDocument) CanSend() bool {
	return d.Status == DocumentStatusPending || d.Status == DocumentStatusFailed
}

// CanCancel reports whether the document may be cancelled.
// A SENT document needs an out-of-band accounting reversal instead.
func (d *SalesDocument) CanCancel() bool {
	return d.Status == DocumentStatusPending || d.Status == DocumentStatusFailed
}

// CanDelete reports whether the document may be removed entirely
func (d *SalesDocument) CanDelete() bool {
	return d.Status == DocumentStatusPending || d.Status == DocumentStatusFailed
}

// MarkSent transitions the document to SENT with the ERP-assigned id
func (d *SalesDocument) MarkSent(erpDocumentID string) error {
	if !d.Status.CanTransitionTo(DocumentStatusSent) {
		return shared.NewDomainError("INVALID_STATE", "Cannot send document in status "+d.Status.String())
	}
	now := time.Now()
	d.Status = DocumentStatusSent
	d.ErpDocumentID = &erpDocumentID
	d.SentAt = &now
	d.ErrorMessage = ""
	d.Touch()
	return nil
}

// MarkFailed records a send failure. Lines are kept unchanged so a
// retry sends identical content unless the document is regenerated.
func (d *SalesDocument) MarkFailed(message string) error {
	if !d.Status.CanTransitionTo(DocumentStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail document in status "+d.Status.String())
	}
	d.Status = DocumentStatusFailed
	d.ErrorMessage = message
	d.Touch()
	return nil
}

// Cancel transitions the document to CANCELLED
func (d *SalesDocument) Cancel() error {
	if !d.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel document in status "+d.Status.String())
	}
	d.Status = DocumentStatusCancelled
	d.Touch()
	return nil
}
