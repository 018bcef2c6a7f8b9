package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adiwp/storescraper/internal/models"
)

var (
	overallRatingSelectors = []string{
		`span[data-testid="lblOverallRating"]`,
		`div.review-summary span.score`,
	}
	totalRatingsSelectors = []string{
		`p[data-testid="lblRatingTotal"]`,
		`div.review-summary span.rating-count`,
	}
	satisfactionSelectors = []string{
		`p[data-testid="lblSatisfactionPercentage"]`,
		`div.review-summary p.satisfaction`,
	}
	reviewSubtitleSelectors = []string{
		`p[data-testid="lblReviewSubtitle"]`,
		`div.review-summary p.subtitle`,
	}
	reviewHeaderSelectors = []string{
		`h3[data-testid="lblReviewHeader"]`,
		`div.review-feed h3`,
	}
	breakdownRowSelectors = []string{
		`div[data-testid="lblRatingBreakdownItem"]`,
		`ul.rating-breakdown li`,
	}
	reviewEntrySelectors = []string{
		`article[data-testid="divReviewItem"]`,
		`div.review-feed article`,
	}
)

// Per-entry selectors, evaluated relative to a breakdown row or review entry.
var (
	breakdownLabelSelectors = []string{
		`span[data-testid="lblBreakdownStarCount"]`,
		`span.star-label`,
	}
	breakdownBarSelectors = []string{
		`div[role="progressbar"]`,
		`div.progress-bar`,
	}
	breakdownPercentSelectors = []string{
		`span[data-testid="lblBreakdownPercentage"]`,
		`span.percentage`,
	}
	reviewerNameSelectors = []string{
		`span[data-testid="lblItemReviewerName"]`,
		`span.reviewer-name`,
	}
	reviewerAvatarSelectors = []string{
		`img[data-testid="imgItemReviewerAvatar"]`,
		`img.reviewer-avatar`,
	}
	reviewStarSelectors = []string{
		`img[data-testid="icnStarFull"]`,
		`span.star.filled`,
	}
	reviewCommentSelectors = []string{
		`span[data-testid="lblItemUlasan"]`,
		`p.review-comment`,
	}
	reviewDateSelectors = []string{
		`p[data-testid="lblItemUlasanDate"]`,
		`span.review-date`,
	}
)

// ReviewAggregator extracts the rating summary, the star-distribution table
// and individual review entries from the review feed region of a snapshot.
type ReviewAggregator struct {
	logger *slog.Logger
}

func NewReviewAggregator() *ReviewAggregator {
	return &ReviewAggregator{
		logger: slog.Default().With("component", "review_aggregator"),
	}
}

// Extract fills the reviews section of the result. The review feed is
// enhancement data: when the region never rendered, everything here degrades
// to nil scalars and empty slices.
func (a *ReviewAggregator) Extract(doc *goquery.Document) models.ReviewData {
	data := models.ReviewData{
		RatingBreakdown:   make([]models.RatingBreakdown, 0),
		IndividualReviews: make([]models.IndividualReview, 0),
	}
	root := doc.Selection

	if text := FirstText(root, overallRatingSelectors...); text != nil {
		data.OverallRating = ExtractFloat(*text)
	}
	if text := FirstText(root, totalRatingsSelectors...); text != nil {
		data.TotalRatings = ExtractInteger(*text)
	}
	if text := FirstText(root, satisfactionSelectors...); text != nil {
		data.SatisfactionPercentage = ExtractFloat(*text)
	}

	data.RatingBreakdown = a.extractBreakdown(root)
	data.IndividualReviews = a.extractReviews(root)
	data.TotalReviews = a.resolveTotalReviews(root, len(data.IndividualReviews))

	return data
}

// extractBreakdown reads the star-distribution rows. A row is kept only when
// star, count and percentage all parse; partial rows are dropped outright.
func (a *ReviewAggregator) extractBreakdown(root *goquery.Selection) []models.RatingBreakdown {
	rows := make([]models.RatingBreakdown, 0)

	entries := FirstMatch(root, breakdownRowSelectors...)
	if entries == nil {
		return rows
	}

	entries.Each(func(_ int, row *goquery.Selection) {
		label := FirstText(row, breakdownLabelSelectors...)
		if label == nil {
			return
		}

		// The label packs both numbers, e.g. "5 (120)": star first, count in
		// parentheses.
		star := ExtractInteger(*label)
		count := extractBreakdownCount(*label)
		percentage := a.extractPercentage(row)

		if star == nil || count == nil || percentage == nil {
			return
		}
		if *star < 1 || *star > 5 {
			return
		}

		rows = append(rows, models.RatingBreakdown{
			Star:       *star,
			Count:      *count,
			Percentage: *percentage,
		})
	})

	return rows
}

// extractBreakdownCount takes the second number of a "star (count)" label.
func extractBreakdownCount(label string) *int {
	open := strings.IndexByte(label, '(')
	if open < 0 {
		// Fall back to whitespace-delimited "5 120" labels.
		fields := strings.Fields(label)
		if len(fields) < 2 {
			return nil
		}
		return ExtractInteger(strings.Join(fields[1:], " "))
	}
	return ExtractInteger(label[open:])
}

// extractPercentage prefers the ARIA progress value on the row's bar and
// falls back to a textual "86%" node.
func (a *ReviewAggregator) extractPercentage(row *goquery.Selection) *float64 {
	if value := FirstAttr(row, "aria-valuenow", breakdownBarSelectors...); value != nil {
		if f := ExtractFloat(*value); f != nil {
			return f
		}
	}

	if text := FirstText(row, breakdownPercentSelectors...); text != nil {
		if strings.Contains(*text, "%") {
			return ExtractFloat(*text)
		}
	}

	return nil
}

// extractReviews reads individual review entries. An entry survives when at
// least one of reviewer name, comment or star rating parsed; empty shells are
// skipped with a diagnostic log.
func (a *ReviewAggregator) extractReviews(root *goquery.Selection) []models.IndividualReview {
	reviews := make([]models.IndividualReview, 0)

	entries := FirstMatch(root, reviewEntrySelectors...)
	if entries == nil {
		return reviews
	}

	entries.Each(func(i int, entry *goquery.Selection) {
		review := models.IndividualReview{
			ReviewerName:      FirstText(entry, reviewerNameSelectors...),
			ReviewerAvatarURL: a.extractAvatar(entry),
			Rating:            a.countStars(entry),
			Comment:           FirstText(entry, reviewCommentSelectors...),
			Date:              FirstText(entry, reviewDateSelectors...),
		}

		if review.ReviewerName == nil && review.Comment == nil && review.Rating == nil {
			a.logger.Debug("skipping empty review entry", "index", i)
			return
		}

		reviews = append(reviews, review)
	})

	return reviews
}

// extractAvatar falls back to the lazy-load attribute when the rendered src is
// still the inline placeholder the site ships before images hydrate.
func (a *ReviewAggregator) extractAvatar(entry *goquery.Selection) *string {
	src := FirstAttr(entry, "src", reviewerAvatarSelectors...)
	if src != nil && !strings.HasPrefix(*src, "data:") {
		return src
	}
	return FirstAttr(entry, "data-src", reviewerAvatarSelectors...)
}

// countStars derives the rating from the number of rendered filled-star
// icons; the markup carries no numeric rating attribute.
func (a *ReviewAggregator) countStars(entry *goquery.Selection) *int {
	stars := FirstMatch(entry, reviewStarSelectors...)
	if stars == nil {
		return nil
	}
	n := stars.Length()
	if n < 1 || n > 5 {
		return nil
	}
	return &n
}

// resolveTotalReviews resolves the review count with decreasing confidence:
// the explicit "dari N ulasan" subtitle, then a count split out of the feed
// header, then the number of entries actually extracted, then zero.
func (a *ReviewAggregator) resolveTotalReviews(root *goquery.Selection, extracted int) int {
	if text := FirstText(root, reviewSubtitleSelectors...); text != nil {
		if n := ExtractInteger(*text); n != nil && *n > 0 {
			return *n
		}
	}

	if header := FirstText(root, reviewHeaderSelectors...); header != nil {
		// Headers look like "Ulasan pembeli (342)" or "Semua Ulasan • 342".
		for _, delim := range []string{"(", "•", "-"} {
			if _, after, found := strings.Cut(*header, delim); found {
				if n := ExtractInteger(after); n != nil && *n > 0 {
					return *n
				}
			}
		}
	}

	if extracted > 0 {
		return extracted
	}
	return 0
}
