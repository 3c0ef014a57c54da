package erp

import (
	"context"

	"github.com/google/uuid"
)

// Sender is the outbound boundary to the external ERP system. A send
// either yields the ERP-assigned document id or an error; the engine
// never retries internally, retry is always a new explicit invocation.
type Sender interface {
	Send(ctx context.Context, doc *SalesDocument) (erpDocumentID string, err error)
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	Status   *DocumentStatus
	Page     int
	PageSize int
}

// StatusCounts holds per-status document counts for the dashboard
type StatusCounts struct {
	Pending   int64 `json:"pending"`
	Sent      int64 `json:"sent"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}

// DocumentRepository persists sales documents.
// Create must enforce the one-active-document-per-order constraint
// atomically and return ErrDocumentAlreadyExists when violated.
type DocumentRepository interface {
	Create(ctx context.Context, doc *SalesDocument) error
	Save(ctx context.Context, doc *SalesDocument) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesDocument, error)
	FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesDocument, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]SalesDocument, int64, error)
	FindSendable(ctx context.Context, tenantID uuid.UUID) ([]SalesDocument, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (StatusCounts, error)
}

// ConnectionRepository loads the ERP connection credentials registered
// for a tenant. FindActiveByTenant returns ErrConnectionNotFound when
// the tenant has no active connection.
type ConnectionRepository interface {
	FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*Connection, error)
}

// TemplateRepository persists sales templates, one per ERP connection
type TemplateRepository interface {
	Save(ctx context.Context, template *SalesTemplate) error
	FindByConfig(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*SalesTemplate, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) (*SalesTemplate, error)
}
