package erp

// PresetID names a pre-filled combination of the four canonical line slots
type PresetID string

const (
	PresetSimpleSale     PresetID = "SIMPLE_SALE"
	PresetWithCommission PresetID = "WITH_COMMISSION"
	PresetFullSettlement PresetID = "FULL_SETTLEMENT"
	PresetCustom         PresetID = "CUSTOM"
)

// IsValid checks if the id names a known preset
func (p PresetID) IsValid() bool {
	switch p {
	case PresetSimpleSale, PresetWithCommission, PresetFullSettlement, PresetCustom:
		return true
	}
	return false
}

// String returns the string representation of the preset id
func (p PresetID) String() string {
	return string(p)
}

// PresetLines holds the four slot configurations a preset installs.
// Nil for CUSTOM, which leaves the slots untouched.
type PresetLines struct {
	ProductSale        SalesLineTemplate
	DeliveryFee        SalesLineTemplate
	SalesCommission    SalesLineTemplate
	DeliveryCommission SalesLineTemplate
}

// Preset is a configuration shortcut offered by the template editor
type Preset struct {
	ID          PresetID
	Name        string
	Description string
	Lines       *PresetLines
}

func presetProductSale() SalesLineTemplate {
	return SalesLineTemplate{
		ProductCode:    ProductCodeFromMapping,
		Description:    "주문상품",
		QuantitySource: ValueSourceOrderQuantity,
		PriceSource:    ValueSourceOrderTotalPrice,
		VATMode:        VATModeSupplyDiv11,
	}
}

func presetDeliveryFee() SalesLineTemplate {
	return SalesLineTemplate{
		Description:    "택배비",
		QuantitySource: ValueSourceFixed1,
		PriceSource:    ValueSourceOrderDeliveryFee,
		VATMode:        VATModeSupplyDiv11,
		SkipIfZero:     true,
	}
}

func presetSalesCommission() SalesLineTemplate {
	return SalesLineTemplate{
		Description:    "판매수수료",
		QuantitySource: ValueSourceFixed1,
		PriceSource:    ValueSourceCommissionAmount,
		VATMode:        VATModeSupplyDiv11,
		NegateAmount:   true,
		SkipIfZero:     true,
	}
}

func presetDeliveryCommission() SalesLineTemplate {
	return SalesLineTemplate{
		Description:    "배송수수료",
		QuantitySource: ValueSourceFixed1,
		PriceSource:    ValueSourceDeliveryCommission,
		VATMode:        VATModeSupplyDiv11,
		NegateAmount:   true,
		SkipIfZero:     true,
	}
}

// Presets returns the preset catalog offered by the template editor
func Presets() []Preset {
	return []Preset{
		{
			ID:          PresetSimpleSale,
			Name:        "일반 판매",
			Description: "상품 판매 + 배송비만 기록",
			Lines: &PresetLines{
				ProductSale: presetProductSale(),
				DeliveryFee: presetDeliveryFee(),
			},
		},
		{
			ID:          PresetWithCommission,
			Name:        "수수료 포함",
			Description: "상품 + 배송비 + 판매수수료",
			Lines: &PresetLines{
				ProductSale:     presetProductSale(),
				DeliveryFee:     presetDeliveryFee(),
				SalesCommission: presetSalesCommission(),
			},
		},
		{
			ID:          PresetFullSettlement,
			Name:        "전체 정산",
			Description: "상품 + 배송비 + 모든 수수료",
			Lines: &PresetLines{
				ProductSale:        presetProductSale(),
				DeliveryFee:        presetDeliveryFee(),
				SalesCommission:    presetSalesCommission(),
				DeliveryCommission: presetDeliveryCommission(),
			},
		},
		{
			ID:          PresetCustom,
			Name:        "직접 설정",
			Description: "각 행을 개별적으로 설정",
		},
	}
}

// LookupPreset finds a preset by id
func LookupPreset(id PresetID) (Preset, bool) {
	for _, p := range Presets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset installs a preset's line slots on the template.
// CUSTOM leaves the slots untouched.
func (t *SalesTemplate) ApplyPreset(id PresetID) error {
	preset, ok := LookupPreset(id)
	if !ok {
		return NewConfigurationError("unknown preset " + string(id))
	}
	if preset.Lines == nil {
		return nil
	}
	t.ProductSale = preset.Lines.ProductSale
	t.DeliveryFee = preset.Lines.DeliveryFee
	t.SalesCommission = preset.Lines.SalesCommission
	t.DeliveryCommission = preset.Lines.DeliveryCommission
	t.Touch()
	return nil
}

// DetectPreset classifies the template's current slot configuration
// back to a preset id. Pure editor convenience; generation never
// consults it.
func DetectPreset(t *SalesTemplate) PresetID {
	hasProductSale := t.ProductSale.ProductCode != "" || t.ProductSale.Description != ""
	hasDeliveryFee := t.DeliveryFee.Description != ""
	hasSalesCommission := t.SalesCommission.Description != "" &&
		t.SalesCommission.PriceSource == ValueSourceCommissionAmount
	hasDeliveryCommission := t.DeliveryCommission.Description != "" &&
		t.DeliveryCommission.PriceSource == ValueSourceDeliveryCommission

	switch {
	case hasProductSale && hasDeliveryFee && hasSalesCommission && hasDeliveryCommission:
		return PresetFullSettlement
	case hasProductSale && hasDeliveryFee && hasSalesCommission:
		return PresetWithCommission
	case hasProductSale && hasDeliveryFee && !hasSalesCommission && !hasDeliveryCommission:
		return PresetSimpleSale
	default:
		return PresetCustom
	}
}
