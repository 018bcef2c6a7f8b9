package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/adiwp/storescraper/internal/models"
	"github.com/adiwp/storescraper/internal/parser"
)

// Service is the product-details pipeline: render, snapshot, extract,
// aggregate. Extraction runs offline on the snapshot, after the browser
// resource is already on its way out.
type Service struct {
	fetcher   PageFetcher
	extractor *parser.ProductExtractor
	reviews   *parser.ReviewAggregator
	logger    *slog.Logger
}

func NewService(fetcher PageFetcher) *Service {
	return &Service{
		fetcher:   fetcher,
		extractor: parser.NewProductExtractor(),
		reviews:   parser.NewReviewAggregator(),
		logger:    slog.Default().With("component", "product_scraper"),
	}
}

func (s *Service) ScrapeProduct(ctx context.Context, url string) (*models.ScrapedProductData, error) {
	log := s.logger.With("scrape_id", uuid.NewString(), "url", url)
	log.Info("scraping product page")

	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Error("render failed", "error", err)
		return nil, err
	}

	data, err := s.extractor.Extract(result.HTML)
	if err != nil {
		log.Error("snapshot could not be parsed", "error", err)
		return nil, err
	}

	if result.ReviewsLoaded {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
		if err == nil {
			data.Reviews = s.reviews.Extract(doc)
		} else {
			log.Warn("review extraction skipped, snapshot unparseable", "error", err)
		}
	} else {
		log.Warn("review section never rendered, returning empty reviews")
	}

	log.Info("scrape complete",
		"hasTitle", data.Product.Title != nil,
		"imageCount", len(data.Product.ImageURLs),
		"reviewCount", len(data.Reviews.IndividualReviews))

	return data, nil
}
