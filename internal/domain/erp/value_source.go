package erp

// LineRole is the canonical role of a generated document line
type LineRole string

const (
	LineRoleProductSale        LineRole = "PRODUCT_SALE"
	LineRoleDeliveryFee        LineRole = "DELIVERY_FEE"
	LineRoleSalesCommission    LineRole = "SALES_COMMISSION"
	LineRoleDeliveryCommission LineRole = "DELIVERY_COMMISSION"
	LineRoleAdditional         LineRole = "ADDITIONAL"

	// LineRoleAll is a mapping target meaning "every line", never a line's own role
	LineRoleAll LineRole = "ALL"
)

// IsValid checks if the role is a valid LineRole
func (r LineRole) IsValid() bool {
	switch r {
	case LineRoleProductSale, LineRoleDeliveryFee, LineRoleSalesCommission,
		LineRoleDeliveryCommission, LineRoleAdditional, LineRoleAll:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r LineRole) String() string {
	return string(r)
}

// VATMode selects how a gross amount is split into supply and VAT
type VATMode string

const (
	// VATModeSupplyDiv11 treats the gross amount as VAT-inclusive and
	// splits out a 10% VAT portion (supply = gross / 1.1).
	VATModeSupplyDiv11 VATMode = "SUPPLY_DIV_11"
	// VATModeNoVAT books the full gross amount as supply
	VATModeNoVAT VATMode = "NO_VAT"
)

// IsValid checks if the mode is a valid VATMode
func (m VATMode) IsValid() bool {
	return m == VATModeSupplyDiv11 || m == VATModeNoVAT
}

// String returns the string representation of the mode
func (m VATMode) String() string {
	return string(m)
}

// ValueSource names where a configured field or line amount takes its value from
type ValueSource string

const (
	// Sources usable for quantities
	ValueSourceFixed1        ValueSource = "FIXED_1"
	ValueSourceOrderQuantity ValueSource = "ORDER_QUANTITY"

	// Sources usable for line prices
	ValueSourceOrderTotalPrice    ValueSource = "ORDER_TOTAL_PRICE"
	ValueSourceOrderDeliveryFee   ValueSource = "ORDER_DELIVERY_FEE"
	ValueSourceCommissionAmount   ValueSource = "COMMISSION_AMOUNT"
	ValueSourceDeliveryCommission ValueSource = "DELIVERY_COMMISSION"

	// Sources usable for global field mappings
	ValueSourceFixed              ValueSource = "FIXED"
	ValueSourceTemplate           ValueSource = "TEMPLATE"
	ValueSourceOrderID            ValueSource = "ORDER_ID"
	ValueSourceMarketplaceOrderID ValueSource = "MARKETPLACE_ORDER_ID"
	ValueSourceBuyerName          ValueSource = "BUYER_NAME"
	ValueSourceReceiverName       ValueSource = "RECEIVER_NAME"
	ValueSourceProductName        ValueSource = "PRODUCT_NAME"
	ValueSourceOptionName         ValueSource = "OPTION_NAME"

	// Sources derived from the line being built, available only after
	// its VAT split has been computed
	ValueSourceUnitPriceVAT ValueSource = "UNIT_PRICE_VAT"
	ValueSourceTotalAmount  ValueSource = "TOTAL_AMOUNT"
	ValueSourceSupplyAmount ValueSource = "SUPPLY_AMOUNT"
	ValueSourceVATAmount    ValueSource = "VAT_AMOUNT"
)

// IsValid checks if the source is a recognized ValueSource
func (s ValueSource) IsValid() bool {
	switch s {
	case ValueSourceFixed1, ValueSourceOrderQuantity,
		ValueSourceOrderTotalPrice, ValueSourceOrderDeliveryFee,
		ValueSourceCommissionAmount, ValueSourceDeliveryCommission,
		ValueSourceFixed, ValueSourceTemplate,
		ValueSourceOrderID, ValueSourceMarketplaceOrderID,
		ValueSourceBuyerName, ValueSourceReceiverName,
		ValueSourceProductName, ValueSourceOptionName,
		ValueSourceUnitPriceVAT, ValueSourceTotalAmount,
		ValueSourceSupplyAmount, ValueSourceVATAmount:
		return true
	}
	return false
}

// String returns the string representation of the source
func (s ValueSource) String() string {
	return string(s)
}

// IsNumeric reports whether the source yields a numeric value
func (s ValueSource) IsNumeric() bool {
	switch s {
	case ValueSourceFixed1, ValueSourceOrderQuantity,
		ValueSourceOrderTotalPrice, ValueSourceOrderDeliveryFee,
		ValueSourceCommissionAmount, ValueSourceDeliveryCommission,
		ValueSourceUnitPriceVAT, ValueSourceTotalAmount,
		ValueSourceSupplyAmount, ValueSourceVATAmount:
		return true
	}
	return false
}

// IsQuantitySource reports whether the source may drive a line quantity
func (s ValueSource) IsQuantitySource() bool {
	return s == ValueSourceFixed1 || s == ValueSourceOrderQuantity
}

// IsPriceSource reports whether the source may drive a line price
func (s ValueSource) IsPriceSource() bool {
	switch s {
	case ValueSourceOrderTotalPrice, ValueSourceOrderDeliveryFee,
		ValueSourceCommissionAmount, ValueSourceDeliveryCommission:
		return true
	}
	return false
}

// FieldType is the declared value type of an ECount extra field
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
)

// ExtraField describes one entry of the closed set of ECount SaveSale
// fields a global mapping may target.
type ExtraField struct {
	Name string
	Type FieldType
}

// extraFieldCatalog is the closed set of mappable ECount fields.
// Field names follow the ECount SaveSale bulk upload schema.
var extraFieldCatalog = []ExtraField{
	{Name: "USER_PRICE_VAT", Type: FieldTypeNumber},
	{Name: "REMARKS", Type: FieldTypeString},
	{Name: "P_REMARKS1", Type: FieldTypeString},
	{Name: "P_REMARKS2", Type: FieldTypeString},
	{Name: "P_REMARKS3", Type: FieldTypeString},
	{Name: "P_AMT1", Type: FieldTypeNumber},
	{Name: "P_AMT2", Type: FieldTypeNumber},
	{Name: "ITEM_CD", Type: FieldTypeString},
	{Name: "ADD_TXT_01", Type: FieldTypeString},
	{Name: "ADD_TXT_02", Type: FieldTypeString},
	{Name: "ADD_TXT_03", Type: FieldTypeString},
	{Name: "ADD_NUM_01", Type: FieldTypeNumber},
	{Name: "ADD_NUM_02", Type: FieldTypeNumber},
	{Name: "ADD_NUM_03", Type: FieldTypeNumber},
}

// ExtraFields returns the catalog of mappable ECount fields
func ExtraFields() []ExtraField {
	catalog := make([]ExtraField, len(extraFieldCatalog))
	copy(catalog, extraFieldCatalog)
	return catalog
}

// LookupExtraField finds a catalog entry by field name
func LookupExtraField(name string) (ExtraField, bool) {
	for _, f := range extraFieldCatalog {
		if f.Name == name {
			return f, true
		}
	}
	return ExtraField{}, false
}

// AllowedForField reports whether the source may feed a field of the
// given declared type. Number fields accept only numeric sources plus
// FIXED literals; string fields accept the textual order sources,
// FIXED, and TEMPLATE.
func (s ValueSource) AllowedForField(t FieldType) bool {
	if s == ValueSourceFixed {
		return true
	}
	switch t {
	case FieldTypeNumber:
		switch s {
		case ValueSourceUnitPriceVAT, ValueSourceTotalAmount,
			ValueSourceSupplyAmount, ValueSourceVATAmount:
			return true
		}
		return false
	case FieldTypeString:
		switch s {
		case ValueSourceTemplate, ValueSourceOrderID, ValueSourceMarketplaceOrderID,
			ValueSourceBuyerName, ValueSourceReceiverName,
			ValueSourceProductName, ValueSourceOptionName:
			return true
		}
		return false
	}
	return false
}
