package erp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/erp"
	"github.com/markethub/backend/internal/domain/order"
)

// TemplateService manages the per-ERP-connection sales template
type TemplateService struct {
	templateRepo erp.TemplateRepository
	logger       *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo erp.TemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		logger:       logger,
	}
}

// Get returns the sales template of an ERP connection. A connection that
// was never configured yields an unsaved SIMPLE_SALE default so the
// settings surface always has something to edit.
func (s *TemplateService) Get(ctx context.Context, tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	tmpl, err := s.templateRepo.FindByConfig(ctx, tenantID, erpConfigID)
	if err != nil {
		if errors.Is(err, erp.ErrTemplateNotFound) {
			return s.defaultTemplate(tenantID, erpConfigID)
		}
		return nil, err
	}
	return tmpl, nil
}

// Save validates and persists the full template configuration. Generation
// never sees an invalid template because violations block the save here.
func (s *TemplateService) Save(ctx context.Context, tenantID, erpConfigID uuid.UUID, req SaveSalesTemplateRequest) (*erp.SalesTemplate, error) {
	tmpl, err := s.templateRepo.FindByConfig(ctx, tenantID, erpConfigID)
	if err != nil {
		if !errors.Is(err, erp.ErrTemplateNotFound) {
			return nil, err
		}
		tmpl = erp.NewSalesTemplate(tenantID, erpConfigID)
	}

	if err := applyRequest(tmpl, req); err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	tmpl.Touch()

	if err := s.templateRepo.Save(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("sales template saved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("erp_config_id", erpConfigID.String()),
		zap.String("preset", erp.DetectPreset(tmpl).String()),
	)
	return tmpl, nil
}

func (s *TemplateService) defaultTemplate(tenantID, erpConfigID uuid.UUID) (*erp.SalesTemplate, error) {
	tmpl := erp.NewSalesTemplate(tenantID, erpConfigID)
	if err := tmpl.ApplyPreset(erp.PresetSimpleSale); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func applyRequest(tmpl *erp.SalesTemplate, req SaveSalesTemplateRequest) error {
	tmpl.IsActive = req.IsActive
	tmpl.DefaultHeader = req.DefaultHeader
	if tmpl.DefaultHeader == nil {
		tmpl.DefaultHeader = make(map[string]string)
	}

	headers := make(map[order.Marketplace]map[string]string, len(req.MarketplaceHeaders))
	for key, header := range req.MarketplaceHeaders {
		m := order.Marketplace(key)
		if !m.IsValid() {
			return erp.NewConfigurationError(fmt.Sprintf("unknown marketplace %q in headers", key))
		}
		headers[m] = header
	}
	tmpl.MarketplaceHeaders = headers

	if req.Preset != "" && req.Preset != erp.PresetCustom.String() {
		if err := tmpl.ApplyPreset(erp.PresetID(req.Preset)); err != nil {
			return err
		}
	} else {
		tmpl.ProductSale = req.ProductSale
		tmpl.DeliveryFee = req.DeliveryFee
		tmpl.SalesCommission = req.SalesCommission
		tmpl.DeliveryCommission = req.DeliveryCommission
	}

	tmpl.AdditionalLines = req.AdditionalLines
	if tmpl.AdditionalLines == nil {
		tmpl.AdditionalLines = make([]erp.AdditionalLineTemplate, 0)
	}
	tmpl.GlobalMappings = req.GlobalMappings
	if tmpl.GlobalMappings == nil {
		tmpl.GlobalMappings = make([]erp.GlobalFieldMapping, 0)
	}
	return nil
}
