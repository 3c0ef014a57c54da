package erp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/markethub/backend/internal/domain/order"
	"github.com/markethub/backend/internal/domain/shared"
)

func resolverTestOrder() *order.Order {
	return &order.Order{
		TenantEntity:       shared.NewTenantEntity(uuid.New()),
		Marketplace:        order.MarketplaceNaver,
		MarketplaceOrderID: "2024123112345",
		BuyerName:          "김철수",
		ReceiverName:       "김영희",
		OrderedAt:          time.Date(2024, 12, 31, 9, 30, 0, 0, time.UTC),
		TotalAmount:        decimal.NewFromInt(52900),
		DeliveryFee:        decimal.NewFromInt(3500),
		Items: []order.Item{
			{
				ProductName:           "겨울 패딩",
				OptionName:            "블랙 / L",
				Quantity:              2,
				UnitPrice:             decimal.NewFromInt(24700),
				TotalPrice:            decimal.NewFromInt(49400),
				ErpProductCode:        "01809",
				CommissionAmount:      decimal.NewFromInt(2470),
				DeliveryCommissionAmt: decimal.NewFromInt(300),
			},
		},
	}
}

func TestSubstituteTemplateVars(t *testing.T) {
	o := resolverTestOrder()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "order id", template: "주문:{orderId}", want: "주문:" + o.ID.String()},
		{name: "marketplace order id", template: "{marketplaceOrderId}", want: "2024123112345"},
		{name: "buyer and receiver", template: "{buyerName}/{receiverName}", want: "김철수/김영희"},
		{name: "marketplace display name", template: "{marketplace} 판매", want: "네이버 스마트스토어 판매"},
		{name: "product and option", template: "{productName} ({optionName})", want: "겨울 패딩 (블랙 / L)"},
		{name: "unknown placeholder kept verbatim", template: "값:{unknownVar}", want: "값:{unknownVar}"},
		{name: "mixed known and unknown", template: "{buyerName}-{nope}", want: "김철수-{nope}"},
		{name: "no placeholders", template: "고정 텍스트", want: "고정 텍스트"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ResolveContext{Order: o, Item: &o.Items[0]}
			assert.Equal(t, tt.want, SubstituteTemplateVars(tt.template, ctx))
		})
	}
}

func TestSubstituteTemplateVars_MissingContext(t *testing.T) {
	// Known placeholders with no backing value resolve to empty, they
	// are not an error.
	got := SubstituteTemplateVars("[{productName}]", ResolveContext{Order: resolverTestOrder()})
	assert.Equal(t, "[]", got)
}

func TestResolveQuantity(t *testing.T) {
	o := resolverTestOrder()

	assert.Equal(t, 1, ResolveQuantity(ValueSourceFixed1, ResolveContext{Order: o}))
	assert.Equal(t, 2, ResolveQuantity(ValueSourceOrderQuantity, ResolveContext{Order: o, Item: &o.Items[0]}))
	assert.Equal(t, 2, ResolveQuantity(ValueSourceOrderQuantity, ResolveContext{Order: o}))
	assert.Equal(t, 0, ResolveQuantity(ValueSourceOrderQuantity, ResolveContext{}))
}

func TestResolvePrice(t *testing.T) {
	o := resolverTestOrder()

	tests := []struct {
		name   string
		source ValueSource
		ctx    ResolveContext
		want   int64
	}{
		{name: "item total price", source: ValueSourceOrderTotalPrice, ctx: ResolveContext{Order: o, Item: &o.Items[0]}, want: 49400},
		{name: "order total without item", source: ValueSourceOrderTotalPrice, ctx: ResolveContext{Order: o}, want: 52900},
		{name: "delivery fee", source: ValueSourceOrderDeliveryFee, ctx: ResolveContext{Order: o}, want: 3500},
		{name: "commission summed over order", source: ValueSourceCommissionAmount, ctx: ResolveContext{Order: o}, want: 2470},
		{name: "delivery commission", source: ValueSourceDeliveryCommission, ctx: ResolveContext{Order: o}, want: 300},
		{name: "missing context resolves to zero", source: ValueSourceOrderDeliveryFee, ctx: ResolveContext{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePrice(tt.source, tt.ctx)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestResolveFieldValue_LineDerivedSources(t *testing.T) {
	o := resolverTestOrder()
	line := &DocumentLine{
		Quantity:     2,
		SupplyAmount: decimal.NewFromInt(44909),
		VATAmount:    decimal.NewFromInt(4491),
		TotalPrice:   decimal.NewFromInt(49400),
	}
	ctx := ResolveContext{Order: o, Line: line}

	assert.Equal(t, "49400", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceTotalAmount}, ctx))
	assert.Equal(t, "44909", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceSupplyAmount}, ctx))
	assert.Equal(t, "4491", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceVATAmount}, ctx))
	assert.Equal(t, "24700", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceUnitPriceVAT}, ctx))
}

func TestResolveFieldValue_OrderSources(t *testing.T) {
	o := resolverTestOrder()
	ctx := ResolveContext{Order: o, Item: &o.Items[0]}

	assert.Equal(t, "fixed-value", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceFixed, FixedValue: "fixed-value"}, ctx))
	assert.Equal(t, "2024123112345", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceMarketplaceOrderID}, ctx))
	assert.Equal(t, "김철수", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceBuyerName}, ctx))
	assert.Equal(t, "겨울 패딩", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceProductName}, ctx))
	assert.Equal(t, "주문 김철수", ResolveFieldValue(GlobalFieldMapping{ValueSource: ValueSourceTemplate, Template: "주문 {buyerName}"}, ctx))
}
