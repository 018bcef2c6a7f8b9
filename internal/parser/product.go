package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adiwp/storescraper/internal/models"
)

// Selector fallback chains, primary data-attribute selectors first, then the
// legacy class-based markup still served to a slice of traffic. Markup churn
// on the marketplace is absorbed here, not in control flow.
var (
	titleSelectors = []string{
		`h1[data-testid="lblPDPDetailProductName"]`,
		`h1.css-1os9jjn`,
		`div.product-content h1`,
	}
	priceSelectors = []string{
		`div[data-testid="lblPDPDetailProductPrice"]`,
		`div.price`,
		`span.product-price`,
	}
	soldCountSelectors = []string{
		`p[data-testid="lblPDPDetailProductSoldCounter"]`,
		`span.prd_label-integrity`,
	}
	stockCountSelectors = []string{
		`p[data-testid="lblPDPDetailProductStock"] b`,
		`p[data-testid="lblPDPDetailProductStock"]`,
		`span.stock-count`,
	}
	availabilitySelectors = []string{
		`span[data-testid="lblPDPStockAvailability"]`,
		`div.stock-status`,
	}
	mainImageSelectors = []string{
		`img[data-testid="PDPMainImage"]`,
		`div.product-image-main img`,
	}
	thumbnailSelectors = []string{
		`div[data-testid="PDPImageThumbnail"] img`,
		`div.product-image-thumbnails img`,
	}
	storeNameSelectors = []string{
		`a[data-testid="llbPDPFooterShopName"] h2`,
		`a[data-testid="llbPDPFooterShopName"]`,
		`div.shop-name a`,
	}
	storeLocationSelectors = []string{
		`span[data-testid="lblPDPFooterShopLocation"]`,
		`div.shop-location`,
	}
	storeRatingSelectors = []string{
		`span[data-testid="lblPDPFooterShopRating"]`,
		`div.shop-rating span.score`,
	}
	storeAvatarSelectors = []string{
		`img[data-testid="imgPDPFooterShopBadge"]`,
		`div.shop-avatar img`,
	}
)

// placeholderAssets marks image URLs that are site chrome rather than product
// photography.
var placeholderAssets = []string{
	"placeholder",
	"default_picture",
	"transparent.png",
	"loading-image",
	"icon-",
}

// ProductExtractor turns a DOM snapshot into a partial product/store struct.
// It never fails field-by-field: anything that does not parse becomes nil.
type ProductExtractor struct{}

func NewProductExtractor() *ProductExtractor {
	return &ProductExtractor{}
}

// Extract parses the snapshot and fills product and store data. The only
// error condition is unparseable HTML; individual missing fields are not
// errors.
func (e *ProductExtractor) Extract(html string) (*models.ScrapedProductData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	data := models.NewScrapedProductData()
	root := doc.Selection

	data.Product.Title = FirstText(root, titleSelectors...)
	data.Product.Price = extractIntegerField(root, priceSelectors)
	data.Product.SoldCount = extractIntegerField(root, soldCountSelectors)
	data.Product.Stock = e.extractStock(root)
	data.Product.ImageURLs = e.extractImages(root)

	data.Store.Name = FirstText(root, storeNameSelectors...)
	data.Store.Location = FirstText(root, storeLocationSelectors...)
	data.Store.AvatarURL = FirstAttr(root, "src", storeAvatarSelectors...)
	if text := FirstText(root, storeRatingSelectors...); text != nil {
		data.Store.Rating = ExtractFloat(*text)
	}

	return data, nil
}

func extractIntegerField(root *goquery.Selection, selectors []string) *int {
	for _, selector := range selectors {
		sel := safeFind(root, selector)
		if sel == nil || sel.Length() == 0 {
			continue
		}
		if n := ExtractInteger(sel.First().Text()); n != nil {
			return n
		}
	}
	return nil
}

// extractStock prefers an explicit numeric stock label. Failing that it falls
// back to the availability badge: in-stock wording with no number counts as
// quantity 1, sold-out wording as 0.
func (e *ProductExtractor) extractStock(root *goquery.Selection) *int {
	if n := extractIntegerField(root, stockCountSelectors); n != nil {
		return n
	}

	badge := FirstText(root, availabilitySelectors...)
	if badge == nil {
		return nil
	}

	stock := 1
	lower := strings.ToLower(*badge)
	if strings.Contains(lower, "habis") || strings.Contains(lower, "sold out") {
		stock = 0
	}
	return &stock
}

// extractImages collects the main image followed by thumbnails, skipping
// inline base64 payloads and placeholder assets, deduplicated by URL with the
// query string ignored. The main image always ends up at index 0.
func (e *ProductExtractor) extractImages(root *goquery.Selection) []string {
	urls := make([]string, 0)
	seen := make(map[string]struct{})

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "data:") {
			return
		}
		lower := strings.ToLower(raw)
		for _, marker := range placeholderAssets {
			if strings.Contains(lower, marker) {
				return
			}
		}
		key := raw
		if i := strings.IndexByte(key, '?'); i >= 0 {
			key = key[:i]
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		urls = append(urls, raw)
	}

	if src := FirstAttr(root, "src", mainImageSelectors...); src != nil {
		add(*src)
	}

	if thumbs := FirstMatch(root, thumbnailSelectors...); thumbs != nil {
		thumbs.Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src)
			}
		})
	}

	return urls
}
