package scraper

import (
	"context"
	"errors"

	"github.com/adiwp/storescraper/internal/models"
)

// ErrRender marks browser and navigation failures: the page could not be
// brought to a state worth extracting from. Field-level extraction problems
// never surface as errors; they degrade to nil fields instead.
var ErrRender = errors.New("failed to render page")

type ProductScraper interface {
	ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProductData, error)
}

// PageFetcher renders a remote page and returns its DOM snapshot.
// ReviewsLoaded reports whether the deferred review region attached before
// its bounded wait expired.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

type FetchResult struct {
	HTML          string
	ReviewsLoaded bool
}
