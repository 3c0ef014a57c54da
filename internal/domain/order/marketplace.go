package order

// Marketplace identifies the e-commerce marketplace an order came from
type Marketplace string

const (
	MarketplaceNaver       Marketplace = "NAVER"
	MarketplaceCoupang     Marketplace = "COUPANG"
	MarketplaceElevenSt    Marketplace = "ELEVEN_ST"
	MarketplaceGmarket     Marketplace = "GMARKET"
	MarketplaceAuction     Marketplace = "AUCTION"
	MarketplaceWemakeprice Marketplace = "WEMAKEPRICE"
	MarketplaceTmon        Marketplace = "TMON"
)

// AllMarketplaces returns all supported marketplaces
func AllMarketplaces() []Marketplace {
	return []Marketplace{
		MarketplaceNaver,
		MarketplaceCoupang,
		MarketplaceElevenSt,
		MarketplaceGmarket,
		MarketplaceAuction,
		MarketplaceWemakeprice,
		MarketplaceTmon,
	}
}

// IsValid checks if the marketplace is supported
func (m Marketplace) IsValid() bool {
	switch m {
	case MarketplaceNaver, MarketplaceCoupang, MarketplaceElevenSt,
		MarketplaceGmarket, MarketplaceAuction, MarketplaceWemakeprice, MarketplaceTmon:
		return true
	}
	return false
}

// String returns the string representation of the marketplace
func (m Marketplace) String() string {
	return string(m)
}

// DisplayName returns the human-readable marketplace name
func (m Marketplace) DisplayName() string {
	switch m {
	case MarketplaceNaver:
		return "네이버 스마트스토어"
	case MarketplaceCoupang:
		return "쿠팡"
	case MarketplaceElevenSt:
		return "11번가"
	case MarketplaceGmarket:
		return "G마켓"
	case MarketplaceAuction:
		return "옥션"
	case MarketplaceWemakeprice:
		return "위메프"
	case MarketplaceTmon:
		return "티몬"
	default:
		return string(m)
	}
}
