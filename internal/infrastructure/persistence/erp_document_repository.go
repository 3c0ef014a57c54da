package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/infrastructure/persistence/models"
)

// GormDocumentRepository implements erp.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts a new document. The partial unique index on
// (tenant_id, order_id) WHERE status <> 'CANCELLED' rejects a second
// active document for the same order atomically; the violation surfaces
// here as ErrDocumentAlreadyExists.
func (r *GormDocumentRepository) Create(ctx context.Context, doc *erp.SalesDocument) error {
	model := models.SalesDocumentModelFromDomain(doc)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return erp.ErrDocumentAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists the current state of an existing document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *erp.SalesDocument) error {
	model := models.SalesDocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a document entirely
func (r *GormDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.SalesDocumentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return erp.ErrDocumentNotFound
	}
	return nil
}

// FindByID finds a document by id within a tenant
func (r *GormDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*erp.SalesDocument, error) {
	var model models.SalesDocumentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByOrder finds the non-cancelled document of an order, if any
func (r *GormDocumentRepository) FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*erp.SalesDocument, error) {
	var model models.SalesDocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ? AND status <> ?", tenantID, orderID, erp.DocumentStatusCancelled).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erp.ErrDocumentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists documents with status filtering and pagination
func (r *GormDocumentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter erp.DocumentFilter) ([]erp.SalesDocument, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalesDocumentModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var documentModels []models.SalesDocumentModel
	if err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&documentModels).Error; err != nil {
		return nil, 0, err
	}

	docs := make([]erp.SalesDocument, len(documentModels))
	for i := range documentModels {
		docs[i] = *documentModels[i].ToDomain()
	}
	return docs, total, nil
}

// FindSendable lists the PENDING and FAILED documents of a tenant
func (r *GormDocumentRepository) FindSendable(ctx context.Context, tenantID uuid.UUID) ([]erp.SalesDocument, error) {
	var documentModels []models.SalesDocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]erp.DocumentStatus{erp.DocumentStatusPending, erp.DocumentStatusFailed}).
		Order("created_at ASC").
		Find(&documentModels).Error; err != nil {
		return nil, err
	}

	docs := make([]erp.SalesDocument, len(documentModels))
	for i := range documentModels {
		docs[i] = *documentModels[i].ToDomain()
	}
	return docs, nil
}

// CountByStatus returns per-status document counts for a tenant
func (r *GormDocumentRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (erp.StatusCounts, error) {
	type statusCount struct {
		Status erp.DocumentStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.SalesDocumentModel{}).
		Select("status, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return erp.StatusCounts{}, err
	}

	var counts erp.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case erp.DocumentStatusPending:
			counts.Pending = row.Count
		case erp.DocumentStatusSent:
			counts.Sent = row.Count
		case erp.DocumentStatusFailed:
			counts.Failed = row.Count
		case erp.DocumentStatusCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

// Ensure GormDocumentRepository implements the repository port
var _ erp.DocumentRepository = (*GormDocumentRepository)(nil)
