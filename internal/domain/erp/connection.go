package erp

import (
	"github.com/google/uuid"

	"github.com/markethub/backend/internal/domain/shared"
)

// Connection errors
var (
	ErrConnectionNotFound = shared.NewDomainError("ERP_NOT_CONFIGURED", "No active ERP connection configured for tenant")
)

// Connection holds a tenant's ECount API credentials. Sales templates
// reference a connection through ErpConfigID. The sender resolves the
// active connection at transmission time, so credential changes take
// effect on the next send without a restart.
type Connection struct {
	shared.TenantEntity
	ComCode       string
	UserID        string
	APICertKey    string
	WarehouseCode string
	IsActive      bool
}

// NewConnection creates an active ERP connection for a tenant
func NewConnection(tenantID uuid.UUID, comCode, userID, apiCertKey, warehouseCode string) *Connection {
	return &Connection{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		ComCode:       comCode,
		UserID:        userID,
		APICertKey:    apiCertKey,
		WarehouseCode: warehouseCode,
		IsActive:      true,
	}
}
