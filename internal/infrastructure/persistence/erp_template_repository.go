package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormTemplateRepository implements erp.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Save upserts the template of an ERP connection
func (r *GormTemplateRepository) Save(ctx context.Context, template *erp.SalesTemplate) error {
	model := models.SalesTemplateModelFromDomain(template)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByConfig finds the template of one ERP connection
func (r *GormTemplateRepository) FindByConfig(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	var model models.SalesTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND erp_config_id = ?", tenantID, erpConfigID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrTemplateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds the active template of a tenant
func (r *GormTemplateRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*erp.SalesTemplate, error) {
	var model models.SalesTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrTemplateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormTemplateRepository implements the repository port
var _ erp.TemplateRepository = (*GormTemplateRepository)(nil)
