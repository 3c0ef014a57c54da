package erp

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/markethub/backend/internal/domain/order"
)

// BuildResult is the outcome of turning one order into document lines
type BuildResult struct {
	Lines       []DocumentLine
	TotalAmount decimal.Decimal
	Warnings    []string
}

// BuildDocumentLines walks the template's line slots against one order
// and emits the ordered document lines. Pure function of (order,
// template); emission order is fixed so line numbers and previews are
// reproducible:
//
//  1. product sale lines, one per mapped order item
//  2. delivery fee line
//  3. sales commission line, when the slot is active
//  4. delivery commission line, when the slot is active
//  5. enabled additional lines
//
// Global field mappings are attached to each line after its VAT split,
// so the line-derived sources resolve against final amounts.
//
// Items without an ERP product mapping are skipped with a warning, not
// a failure. An order yielding zero lines overall is a generation
// failure, distinct from any later send failure.
func BuildDocumentLines(o *order.Order, t *SalesTemplate) (*BuildResult, error) {
	result := &BuildResult{
		Lines:       make([]DocumentLine, 0, len(o.Items)+4),
		TotalAmount: decimal.Zero,
	}

	buildProductSaleLines(o, t, result)
	buildOrderLevelLine(o, t, t.DeliveryFee, LineRoleDeliveryFee, result)
	if t.SalesCommissionActive() {
		buildOrderLevelLine(o, t, t.SalesCommission, LineRoleSalesCommission, result)
	}
	if t.DeliveryCommissionActive() {
		buildOrderLevelLine(o, t, t.DeliveryCommission, LineRoleDeliveryCommission, result)
	}
	buildAdditionalLines(o, t, result)

	if len(result.Lines) == 0 {
		return nil, ErrNoDocumentLines
	}

	for i := range result.Lines {
		result.Lines[i].LineNo = i + 1
		result.TotalAmount = result.TotalAmount.Add(result.Lines[i].TotalPrice)
	}

	return result, nil
}

func buildProductSaleLines(o *order.Order, t *SalesTemplate, result *BuildResult) {
	tmpl := t.ProductSale
	for i := range o.Items {
		item := &o.Items[i]

		code := resolveProductCode(tmpl, o.Marketplace, item.ErpProductCode)
		if code == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("item %q skipped: no ERP product mapping", item.ProductName))
			continue
		}

		ctx := ResolveContext{Order: o, Item: item}
		gross := ResolvePrice(tmpl.PriceSource, ctx)
		if gross.IsZero() && tmpl.SkipIfZero {
			continue
		}
		vat := ApplyVATNegated(gross, tmpl.VATMode, tmpl.NegateAmount)

		line := DocumentLine{
			Role:         LineRoleProductSale,
			ProductCode:  code,
			Description:  resolveItemDescription(tmpl, o.Marketplace, item),
			Quantity:     ResolveQuantity(tmpl.QuantitySource, ctx),
			SupplyAmount: vat.Supply,
			VATAmount:    vat.VAT,
			TotalPrice:   vat.Total,
			Remarks:      tmpl.Remarks,
		}
		attachGlobalMappings(&line, t, ResolveContext{Order: o, Item: item, Line: &line})
		result.Lines = append(result.Lines, line)
	}
}

func buildOrderLevelLine(o *order.Order, t *SalesTemplate, tmpl SalesLineTemplate, role LineRole, result *BuildResult) {
	ctx := ResolveContext{Order: o}
	gross := ResolvePrice(tmpl.PriceSource, ctx)
	if gross.IsZero() && tmpl.SkipIfZero {
		return
	}
	vat := ApplyVATNegated(gross, tmpl.VATMode, tmpl.NegateAmount)

	code := tmpl.ProductCode
	description := tmpl.Description
	if ov, ok := tmpl.OverrideFor(o.Marketplace); ok {
		if ov.ProductCode != "" {
			code = ov.ProductCode
		}
		if ov.Description != "" {
			description = ov.Description
		}
	}

	line := DocumentLine{
		Role:         role,
		ProductCode:  code,
		Description:  description,
		Quantity:     ResolveQuantity(tmpl.QuantitySource, ctx),
		SupplyAmount: vat.Supply,
		VATAmount:    vat.VAT,
		TotalPrice:   vat.Total,
		Remarks:      tmpl.Remarks,
	}
	attachGlobalMappings(&line, t, ResolveContext{Order: o, Line: &line})
	result.Lines = append(result.Lines, line)
}

func buildAdditionalLines(o *order.Order, t *SalesTemplate, result *BuildResult) {
	for _, tmpl := range t.AdditionalLines {
		if !tmpl.Enabled {
			continue
		}
		gross := tmpl.UnitPrice.Mul(decimal.NewFromInt(int64(tmpl.Quantity)))
		vat := ApplyVATNegated(gross, tmpl.VATMode, tmpl.NegateAmount)

		line := DocumentLine{
			Role:          LineRoleAdditional,
			ProductCode:   tmpl.ProductCode,
			Description:   tmpl.Description,
			WarehouseCode: tmpl.WarehouseCode,
			Quantity:      tmpl.Quantity,
			SupplyAmount:  vat.Supply,
			VATAmount:     vat.VAT,
			TotalPrice:    vat.Total,
			Remarks:       tmpl.Remarks,
		}
		attachGlobalMappings(&line, t, ResolveContext{Order: o, Line: &line})
		result.Lines = append(result.Lines, line)
	}
}

func attachGlobalMappings(line *DocumentLine, t *SalesTemplate, ctx ResolveContext) {
	for _, m := range t.GlobalMappings {
		if !m.TargetsRole(line.Role) {
			continue
		}
		line.SetExtraField(m.FieldName, ResolveFieldValue(m, ctx))
	}
}

func resolveProductCode(tmpl SalesLineTemplate, m order.Marketplace, mappedCode string) string {
	if tmpl.ProductCode == ProductCodeFromMapping {
		return mappedCode
	}
	if ov, ok := tmpl.OverrideFor(m); ok && ov.ProductCode != "" {
		return ov.ProductCode
	}
	return tmpl.ProductCode
}

func resolveItemDescription(tmpl SalesLineTemplate, m order.Marketplace, item *order.Item) string {
	if ov, ok := tmpl.OverrideFor(m); ok && ov.Description != "" {
		return ov.Description
	}
	if tmpl.Description != "" {
		return tmpl.Description
	}
	if item.OptionName == "" {
		return item.ProductName
	}
	return strings.Join([]string{item.ProductName, item.OptionName}, " / ")
}
