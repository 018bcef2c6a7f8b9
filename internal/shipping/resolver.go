package shipping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/adiwp/storescraper/internal/config"
	"github.com/adiwp/storescraper/internal/models"
	"github.com/adiwp/storescraper/internal/parser"
)

var (
	ErrMissingAddress      = errors.New("address is required")
	ErrMissingWeight       = errors.New("weight is required")
	ErrInvalidWeight       = errors.New("weight must be a positive number")
	ErrCityNotResolved     = errors.New("could not determine city from address")
	ErrDestinationNotFound = errors.New("no destination found for city")
	ErrTariffUnavailable   = errors.New("failed to fetch carrier fee table")
)

var feeRowSelectors = []string{
	`table.tariff-result tbody tr`,
	`table tbody tr`,
}

// destinationResult is one entry of the carrier's destination search response.
type destinationResult struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Resolver turns a free-form address and a weight into carrier shipping
// options: city heuristic, destination-code lookup, then a scrape of the
// server-rendered fee table.
type Resolver struct {
	http       *resty.Client
	searchURL  string
	tariffURL  string
	originCode string
	logger     *slog.Logger
}

func NewResolver(cfg config.ShippingConfig) *Resolver {
	return &Resolver{
		http:       resty.New().SetTimeout(cfg.RequestTimeout),
		searchURL:  cfg.SearchURL,
		tariffURL:  cfg.TariffURL,
		originCode: cfg.OriginCode,
		logger:     slog.Default().With("component", "shipping_resolver"),
	}
}

// GetRates validates input before any network call, then walks the pipeline.
func (r *Resolver) GetRates(ctx context.Context, address, weight string) ([]models.ShippingOption, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrMissingAddress
	}
	if strings.TrimSpace(weight) == "" {
		return nil, ErrMissingWeight
	}
	kg, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil || kg <= 0 {
		return nil, ErrInvalidWeight
	}

	city := ExtractCityFromAddress(address)
	if city == "" {
		return nil, fmt.Errorf("%w: %q", ErrCityNotResolved, address)
	}

	code := r.resolveDestination(ctx, city)
	if code == "" {
		return nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, city)
	}

	options, err := r.fetchTariffs(ctx, code, kg)
	if err != nil {
		return nil, err
	}

	r.logger.Info("resolved shipping rates", "city", city, "destination", code, "options", len(options))
	return options, nil
}

// resolveDestination queries the carrier's destination search and takes the
// first result's code. No results and request failure both resolve to "":
// the caller cannot distinguish an unknown city from a flaky search, and
// treats both as unresolvable.
func (r *Resolver) resolveDestination(ctx context.Context, city string) string {
	var results []destinationResult

	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("q", city).
		SetResult(&results).
		Get(r.searchURL)
	if err != nil {
		r.logger.Warn("destination search failed", "city", city, "error", err)
		return ""
	}
	if resp.IsError() {
		r.logger.Warn("destination search returned error status", "city", city, "status", resp.StatusCode())
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	return results[0].Code
}

// fetchTariffs loads the server-rendered fee table keyed by origin,
// destination and weight, and extracts {service, price, etd} rows. Rows
// missing any field are dropped.
func (r *Resolver) fetchTariffs(ctx context.Context, destinationCode string, kg float64) ([]models.ShippingOption, error) {
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from":   r.originCode,
			"thru":   destinationCode,
			"weight": strconv.FormatFloat(kg, 'f', -1, 64),
		}).
		Get(r.tariffURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTariffUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrTariffUnavailable, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTariffUnavailable, err)
	}

	return r.parseFeeTable(doc), nil
}

func (r *Resolver) parseFeeTable(doc *goquery.Document) []models.ShippingOption {
	options := make([]models.ShippingOption, 0)

	rows := parser.FirstMatch(doc.Selection, feeRowSelectors...)
	if rows == nil {
		return options
	}

	rows.Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		service := strings.TrimSpace(cells.Eq(0).Text())
		price := parser.ExtractInteger(cells.Eq(1).Text())
		etd := strings.TrimSpace(cells.Eq(2).Text())

		if service == "" || price == nil || etd == "" {
			r.logger.Debug("dropping incomplete fee row", "index", i)
			return
		}

		options = append(options, models.ShippingOption{
			Service: service,
			Price:   *price,
			ETD:     etd,
		})
	})

	return options
}
