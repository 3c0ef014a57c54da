package erp

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

// ProductCodeFromMapping is the product-code sentinel meaning "use the
// ERP code resolved by the product mapping step for each order item".
const ProductCodeFromMapping = "FROM_MAPPING"

// Header field names carrying the ERP customer identity
const (
	HeaderFieldCustomerCode = "CUST"
	HeaderFieldCustomerName = "CUST_DES"
)

// Template errors
var (
	ErrTemplateNotFound = shared.NewDomainError("TEMPLATE_NOT_FOUND", "Sales template not found")
)

// NewConfigurationError creates a template configuration error.
// Configuration errors block the save and are never raised during
// document generation.
func NewConfigurationError(message string) *shared.DomainError {
	return shared.NewDomainError("CONFIGURATION_ERROR", message)
}

// MarketplaceOverride replaces a line template's product code and
// description for orders from one marketplace.
type MarketplaceOverride struct {
	ProductCode string `json:"product_code"`
	Description string `json:"description"`
}

// SalesLineTemplate configures one of the four canonical line slots
type SalesLineTemplate struct {
	ProductCode          string                                    `json:"product_code"`
	Description          string                                    `json:"description"`
	QuantitySource       ValueSource                               `json:"quantity_source"`
	PriceSource          ValueSource                               `json:"price_source"`
	VATMode              VATMode                                   `json:"vat_mode"`
	NegateAmount         bool                                      `json:"negate_amount"`
	SkipIfZero           bool                                      `json:"skip_if_zero"`
	Remarks              string                                    `json:"remarks"`
	MarketplaceOverrides map[order.Marketplace]MarketplaceOverride `json:"marketplace_overrides,omitempty"`
}

// OverrideFor returns the marketplace-specific override, if configured
func (t SalesLineTemplate) OverrideFor(m order.Marketplace) (MarketplaceOverride, bool) {
	if t.MarketplaceOverrides == nil {
		return MarketplaceOverride{}, false
	}
	ov, ok := t.MarketplaceOverrides[m]
	return ov, ok
}

// AdditionalLineTemplate is a free-standing line emitted verbatim on
// every document, independent of order content.
type AdditionalLineTemplate struct {
	Enabled       bool            `json:"enabled"`
	ProductCode   string          `json:"product_code"`
	Description   string          `json:"description"`
	WarehouseCode string          `json:"warehouse_code"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	VATMode       VATMode         `json:"vat_mode"`
	NegateAmount  bool            `json:"negate_amount"`
	Remarks       string          `json:"remarks"`
}

// GlobalFieldMapping attaches one extra ECount field to generated lines
type GlobalFieldMapping struct {
	FieldName   string      `json:"field_name"`
	ValueSource ValueSource `json:"value_source"`
	FixedValue  string      `json:"fixed_value,omitempty"`
	Template    string      `json:"template,omitempty"`
	LineRoles   []LineRole  `json:"line_roles"`
}

// TargetsRole reports whether the mapping applies to lines of the role
func (m GlobalFieldMapping) TargetsRole(role LineRole) bool {
	for _, r := range m.LineRoles {
		if r == LineRoleAll || r == role {
			return true
		}
	}
	return false
}

// SalesTemplate is the per-ERP-connection document generation
// configuration. It is written by the settings surface and read at
// generation time; generation never mutates it.
type SalesTemplate struct {
	shared.TenantEntity
	ErpConfigID        uuid.UUID
	IsActive           bool
	DefaultHeader      map[string]string
	MarketplaceHeaders map[order.Marketplace]map[string]string
	ProductSale        SalesLineTemplate
	DeliveryFee        SalesLineTemplate
	SalesCommission    SalesLineTemplate
	DeliveryCommission SalesLineTemplate
	AdditionalLines    []AdditionalLineTemplate
	GlobalMappings     []GlobalFieldMapping
}

// NewSalesTemplate creates an empty active template for an ERP connection
func NewSalesTemplate(tenantID, erpConfigID uuid.UUID) *SalesTemplate {
	return &SalesTemplate{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		ErpConfigID:        erpConfigID,
		IsActive:           true,
		DefaultHeader:      make(map[string]string),
		MarketplaceHeaders: make(map[order.Marketplace]map[string]string),
		AdditionalLines:    make([]AdditionalLineTemplate, 0),
		GlobalMappings:     make([]GlobalFieldMapping, 0),
	}
}

// HeaderFor merges the default header with the marketplace-specific
// overrides. Marketplace values win on conflicting keys.
func (t *SalesTemplate) HeaderFor(m order.Marketplace) map[string]string {
	merged := make(map[string]string, len(t.DefaultHeader))
	for k, v := range t.DefaultHeader {
		merged[k] = v
	}
	for k, v := range t.MarketplaceHeaders[m] {
		merged[k] = v
	}
	return merged
}

// CustomerFor resolves the ERP customer code and name for a marketplace
// from the merged header.
func (t *SalesTemplate) CustomerFor(m order.Marketplace) (code, name string) {
	header := t.HeaderFor(m)
	return header[HeaderFieldCustomerCode], header[HeaderFieldCustomerName]
}

// SalesCommissionActive reports whether the sales commission slot
// participates in generation. Activity is encoded by the price source,
// there is no separate enabled flag on canonical slots.
func (t *SalesTemplate) SalesCommissionActive() bool {
	return t.SalesCommission.PriceSource == ValueSourceCommissionAmount
}

// DeliveryCommissionActive reports whether the delivery commission slot
// participates in generation.
func (t *SalesTemplate) DeliveryCommissionActive() bool {
	return t.DeliveryCommission.PriceSource == ValueSourceDeliveryCommission
}

// Validate checks the template configuration. Violations surface at
// save time only; generation assumes a validated template.
func (t *SalesTemplate) Validate() error {
	slots := []struct {
		name string
		tmpl SalesLineTemplate
	}{
		{"product_sale", t.ProductSale},
		{"delivery_fee", t.DeliveryFee},
		{"sales_commission", t.SalesCommission},
		{"delivery_commission", t.DeliveryCommission},
	}
	for _, slot := range slots {
		if err := validateLineSlot(slot.name, slot.tmpl); err != nil {
			return err
		}
	}

	for i, line := range t.AdditionalLines {
		if !line.Enabled {
			continue
		}
		if line.ProductCode == "" {
			return NewConfigurationError(fmt.Sprintf("additional line %d: product code is required", i+1))
		}
		if line.Quantity <= 0 {
			return NewConfigurationError(fmt.Sprintf("additional line %d: quantity must be positive", i+1))
		}
		if line.VATMode != "" && !line.VATMode.IsValid() {
			return NewConfigurationError(fmt.Sprintf("additional line %d: unknown VAT mode %q", i+1, line.VATMode))
		}
	}

	seen := make(map[string]bool, len(t.GlobalMappings))
	for _, m := range t.GlobalMappings {
		field, ok := LookupExtraField(m.FieldName)
		if !ok {
			return NewConfigurationError(fmt.Sprintf("field mapping: unknown field %q", m.FieldName))
		}
		if seen[m.FieldName] {
			return NewConfigurationError(fmt.Sprintf("field mapping: duplicate field %q", m.FieldName))
		}
		seen[m.FieldName] = true
		if !m.ValueSource.IsValid() {
			return NewConfigurationError(fmt.Sprintf("field mapping %q: unknown value source %q", m.FieldName, m.ValueSource))
		}
		if !m.ValueSource.AllowedForField(field.Type) {
			return NewConfigurationError(fmt.Sprintf("field mapping %q: source %s not allowed for %s field", m.FieldName, m.ValueSource, field.Type))
		}
		if m.ValueSource == ValueSourceTemplate && m.Template == "" {
			return NewConfigurationError(fmt.Sprintf("field mapping %q: template string is required", m.FieldName))
		}
		if len(m.LineRoles) == 0 {
			return NewConfigurationError(fmt.Sprintf("field mapping %q: at least one target line type is required", m.FieldName))
		}
		for _, role := range m.LineRoles {
			if !role.IsValid() {
				return NewConfigurationError(fmt.Sprintf("field mapping %q: unknown line type %q", m.FieldName, role))
			}
		}
	}

	return nil
}

func validateLineSlot(name string, tmpl SalesLineTemplate) error {
	if tmpl.QuantitySource != "" && !tmpl.QuantitySource.IsQuantitySource() {
		return NewConfigurationError(fmt.Sprintf("%s: %q is not a quantity source", name, tmpl.QuantitySource))
	}
	if tmpl.PriceSource != "" && !tmpl.PriceSource.IsPriceSource() {
		return NewConfigurationError(fmt.Sprintf("%s: %q is not a price source", name, tmpl.PriceSource))
	}
	if tmpl.VATMode != "" && !tmpl.VATMode.IsValid() {
		return NewConfigurationError(fmt.Sprintf("%s: unknown VAT mode %q", name, tmpl.VATMode))
	}
	for m := range tmpl.MarketplaceOverrides {
		if !m.IsValid() {
			return NewConfigurationError(fmt.Sprintf("%s: unknown marketplace %q in overrides", name, m))
		}
	}
	return nil
}
