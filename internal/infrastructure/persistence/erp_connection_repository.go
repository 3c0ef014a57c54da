package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormConnectionRepository implements erp.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindActiveByTenant finds the active ERP connection of a tenant
func (r *GormConnectionRepository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*erp.Connection, error) {
	var model models.ErpConnectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormConnectionRepository implements the repository port
var _ erp.ConnectionRepository = (*GormConnectionRepository)(nil)
