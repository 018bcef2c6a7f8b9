package models

// ScrapedProductData is the best-effort extraction result for a single product
// page. Every scalar field is independently nullable; slices are always
// non-nil so they serialize as [] rather than null.
type ScrapedProductData struct {
	Product ProductInfo `json:"product"`
	Store   StoreInfo   `json:"store"`
	Reviews ReviewData  `json:"reviews"`
}

type ProductInfo struct {
	Title     *string  `json:"title"`
	ImageURLs []string `json:"imageUrls"`
	SoldCount *int     `json:"soldCount"`
	Stock     *int     `json:"stock"`
	Price     *int     `json:"price"`
}

type StoreInfo struct {
	Name      *string  `json:"name"`
	Location  *string  `json:"location"`
	Rating    *float64 `json:"rating"`
	AvatarURL *string  `json:"avatarUrl"`
}

type ReviewData struct {
	OverallRating          *float64           `json:"overallRating"`
	TotalRatings           *int               `json:"totalRatings"`
	TotalReviews           int                `json:"totalReviews"`
	SatisfactionPercentage *float64           `json:"satisfactionPercentage"`
	RatingBreakdown        []RatingBreakdown  `json:"ratingBreakdown"`
	IndividualReviews      []IndividualReview `json:"individualReviews"`
}

// RatingBreakdown is one row of the star-distribution table. Rows are only
// emitted when star, count and percentage all parsed; there are no partial rows.
type RatingBreakdown struct {
	Star       int     `json:"star"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type IndividualReview struct {
	ReviewerName      *string `json:"reviewerName"`
	ReviewerAvatarURL *string `json:"reviewerAvatarUrl"`
	Rating            *int    `json:"rating"`
	Comment           *string `json:"comment"`
	Date              *string `json:"date"`
}

// ShippingOption is one row of a carrier fee table. Rows missing any of the
// three fields are dropped during extraction.
type ShippingOption struct {
	Service string `json:"service"`
	Price   int    `json:"price"`
	ETD     string `json:"etd"`
}

func NewScrapedProductData() *ScrapedProductData {
	return &ScrapedProductData{
		Product: ProductInfo{ImageURLs: make([]string, 0)},
		Reviews: ReviewData{
			RatingBreakdown:   make([]RatingBreakdown, 0),
			IndividualReviews: make([]IndividualReview, 0),
		},
	}
}
