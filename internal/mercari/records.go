package mercari

// ResultSummary is the lightweight per-item projection returned by the
// search endpoint. Summaries are created per response and never mutated.
type ResultSummary struct {
	ID       string
	Name     string
	Price    int
	Status   ItemStatus
	ImageURL string
	Created  int64
	Updated  int64
	Auction  *Auction
}

// EnrichedRecord is the full listing detail fetched by identifier.
// Nested objects default to their zero value when the response omits
// them; only the six required top-level fields can fail normalization.
type EnrichedRecord struct {
	ID          string
	Name        string
	Price       int
	Status      ItemStatus
	Created     int64
	Updated     int64
	Description string

	Condition        ItemCondition
	Category         ItemCategory
	Seller           Seller
	ConvertedPrice   ConvertedPrice
	ShippingPayer    ShippingPayer
	ShippingMethod   ShippingMethod
	ShippingFromArea ShippingFromArea
	ShippingDuration ShippingDuration
	ShippingClass    ShippingClass
	Auction          *Auction

	NumLikes    int
	NumComments int

	Photos           []string
	Thumbnails       []string
	ParentCategories []ParentCategoryTier
	Colors           []Color
	Attributes       []ItemAttribute
	Comments         []Comment

	Liked               bool
	IsOfferable         bool
	IsAnonymousShipping bool
	IsWebVisible        bool
	IsStockItem         bool
}

// Ratings is the seller rating breakdown.
type Ratings struct {
	Good   int
	Normal int
	Bad    int
}

// ConvertedPrice is the price converted to another currency.
type ConvertedPrice struct {
	Price        int
	CurrencyCode string
	RateUpdated  int64
}

// Seller holds seller identity, ratings and moderation flags.
type Seller struct {
	ID           string
	Name         string
	Created      int64
	NumSellItems int
	Ratings      Ratings
	NumRatings   int
	Score        float64
	StarRating   float64
	IsOfficial   bool
	QuickShipper bool
	IsBlocked    bool
}

// ItemCategory carries the leaf category with its parent/root lineage.
type ItemCategory struct {
	ID                 string
	Name               string
	DisplayOrder       int
	ParentCategoryID   string
	ParentCategoryName string
	RootCategoryID     string
	RootCategoryName   string
	BrandGroupID       string
}

// ParentCategoryTier is one entry of the category lineage list.
type ParentCategoryTier struct {
	ID           string
	Name         string
	DisplayOrder int
}

// ItemCondition is the listing condition status.
type ItemCondition struct {
	ID   string
	Name string
}

// ShippingPayer identifies who pays the shipping fee.
type ShippingPayer struct {
	ID   string
	Name string
	Code string
}

// ShippingMethod describes the shipping method.
type ShippingMethod struct {
	ID           string
	Name         string
	IsDeprecated bool
}

// ShippingFromArea is the shipping origin area.
type ShippingFromArea struct {
	ID   string
	Name string
}

// ShippingDuration is the expected shipping duration range.
type ShippingDuration struct {
	ID      string
	Name    string
	MinDays int
	MaxDays int
}

// ShippingClass is the shipping class and fee breakdown.
type ShippingClass struct {
	ID          string
	Fee         int
	ShippingFee int
	PickupFee   int
	TotalFee    int
	IsPickup    bool
}

// Auction is present only for listings under auction. Bid amounts stay
// string-typed to preserve values past safe integer precision in other
// runtimes consuming the output.
type Auction struct {
	ID          string
	BidDeadline string
	TotalBid    string
	HighestBid  string
}

// ItemAttributeValue is one value of a listing attribute.
type ItemAttributeValue struct {
	ID   string
	Text string
}

// ItemAttribute is a listing attribute with its values.
type ItemAttribute struct {
	ID     string
	Text   string
	Values []ItemAttributeValue
}

// Color is a listing color entry.
type Color struct {
	ID   string
	Name string
	RGB  string
}

// Comment is one comment on a listing.
type Comment struct {
	ID      string
	Created int64
}
