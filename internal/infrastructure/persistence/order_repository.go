package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM.
// The engine treats orders as a read model; nothing here writes.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by id within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the orders matching the given ids. Missing ids are
// absent from the result; the batch generation flow reports them as
// not found per id.
func (r *GormOrderRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// FindWithoutActiveDocument lists the orders of a tenant that currently
// have no non-cancelled sales document, the candidates for batch
// generation.
func (r *GormOrderRepository) FindWithoutActiveDocument(ctx context.Context, tenantID uuid.UUID) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("NOT EXISTS (SELECT 1 FROM erp_sales_documents d WHERE d.order_id = orders.id AND d.tenant_id = orders.tenant_id AND d.status <> ?)",
			erp.DocumentStatusCancelled).
		Order("ordered_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Ensure GormOrderRepository implements the repository port
var _ order.Repository = (*GormOrderRepository)(nil)
