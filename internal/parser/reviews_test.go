package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewFeedFixture = `<!DOCTYPE html>
<html>
<body>
<div data-testid="divReviewFeed">
	<span data-testid="lblOverallRating">4,9</span>
	<p data-testid="lblRatingTotal">150 rating</p>
	<p data-testid="lblSatisfactionPercentage">97% pembeli merasa puas</p>
	<p data-testid="lblReviewSubtitle">dari 120 ulasan</p>

	<div data-testid="lblRatingBreakdownItem">
		<span data-testid="lblBreakdownStarCount">5 (110)</span>
		<div role="progressbar" aria-valuenow="86"></div>
	</div>
	<div data-testid="lblRatingBreakdownItem">
		<span data-testid="lblBreakdownStarCount">4 (30)</span>
		<span data-testid="lblBreakdownPercentage">10%</span>
	</div>
	<div data-testid="lblRatingBreakdownItem">
		<span data-testid="lblBreakdownStarCount">3 (10)</span>
	</div>

	<article data-testid="divReviewItem">
		<img data-testid="imgItemReviewerAvatar" src="https://images.example.net/user/1.jpg">
		<span data-testid="lblItemReviewerName">Budi</span>
		<img data-testid="icnStarFull"><img data-testid="icnStarFull"><img data-testid="icnStarFull"><img data-testid="icnStarFull"><img data-testid="icnStarFull">
		<span data-testid="lblItemUlasan">Barang bagus, pengiriman cepat.</span>
		<p data-testid="lblItemUlasanDate">2 minggu lalu</p>
	</article>
	<article data-testid="divReviewItem">
		<img data-testid="imgItemReviewerAvatar" src="data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=" data-src="https://images.example.net/user/2.jpg">
		<span data-testid="lblItemUlasan">Sesuai deskripsi.</span>
	</article>
	<article data-testid="divReviewItem">
		<img data-testid="imgItemReviewerAvatar" src="https://images.example.net/user/3.jpg">
	</article>
</div>
</body>
</html>`

func TestReviewAggregatorSummary(t *testing.T) {
	a := NewReviewAggregator()

	data := a.Extract(mustDoc(t, reviewFeedFixture))

	require.NotNil(t, data.OverallRating)
	assert.InDelta(t, 4.9, *data.OverallRating, 0.0001)

	require.NotNil(t, data.TotalRatings)
	assert.Equal(t, 150, *data.TotalRatings)

	require.NotNil(t, data.SatisfactionPercentage)
	assert.InDelta(t, 97, *data.SatisfactionPercentage, 0.0001)
}

func TestRatingBreakdownDropsPartialRows(t *testing.T) {
	a := NewReviewAggregator()

	data := a.Extract(mustDoc(t, reviewFeedFixture))

	// The 3-star row carries no percentage in any form and must be absent,
	// not emitted with a zero field.
	require.Len(t, data.RatingBreakdown, 2)

	assert.Equal(t, 5, data.RatingBreakdown[0].Star)
	assert.Equal(t, 110, data.RatingBreakdown[0].Count)
	assert.InDelta(t, 86, data.RatingBreakdown[0].Percentage, 0.0001)

	assert.Equal(t, 4, data.RatingBreakdown[1].Star)
	assert.Equal(t, 30, data.RatingBreakdown[1].Count)
	assert.InDelta(t, 10, data.RatingBreakdown[1].Percentage, 0.0001)
}

func TestIndividualReviewExtraction(t *testing.T) {
	a := NewReviewAggregator()

	data := a.Extract(mustDoc(t, reviewFeedFixture))

	// The third entry has neither name, comment nor stars and is skipped.
	require.Len(t, data.IndividualReviews, 2)

	first := data.IndividualReviews[0]
	require.NotNil(t, first.ReviewerName)
	assert.Equal(t, "Budi", *first.ReviewerName)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 5, *first.Rating)
	require.NotNil(t, first.Comment)
	assert.Equal(t, "Barang bagus, pengiriman cepat.", *first.Comment)
	require.NotNil(t, first.Date)
	assert.Equal(t, "2 minggu lalu", *first.Date)
	require.NotNil(t, first.ReviewerAvatarURL)
	assert.Equal(t, "https://images.example.net/user/1.jpg", *first.ReviewerAvatarURL)

	// Second entry kept on comment alone; its avatar falls back to the
	// lazy-load attribute because the rendered src is a placeholder data URI.
	second := data.IndividualReviews[1]
	assert.Nil(t, second.ReviewerName)
	assert.Nil(t, second.Rating)
	require.NotNil(t, second.Comment)
	assert.Equal(t, "Sesuai deskripsi.", *second.Comment)
	require.NotNil(t, second.ReviewerAvatarURL)
	assert.Equal(t, "https://images.example.net/user/2.jpg", *second.ReviewerAvatarURL)
}

func TestTotalReviewsFromSubtitle(t *testing.T) {
	a := NewReviewAggregator()

	data := a.Extract(mustDoc(t, reviewFeedFixture))
	assert.Equal(t, 120, data.TotalReviews)
}

func TestTotalReviewsFromHeaderSplit(t *testing.T) {
	a := NewReviewAggregator()

	html := `<html><body>
		<h3 data-testid="lblReviewHeader">Ulasan pembeli (342)</h3>
		<article data-testid="divReviewItem"><span data-testid="lblItemUlasan">Oke</span></article>
	</body></html>`

	data := a.Extract(mustDoc(t, html))
	assert.Equal(t, 342, data.TotalReviews)
}

func TestTotalReviewsFallsBackToExtractedCount(t *testing.T) {
	a := NewReviewAggregator()

	// totalRatings present but no subtitle and no header count: the number of
	// reviews actually extracted wins.
	html := `<html><body>
		<p data-testid="lblRatingTotal">150 rating</p>
		<article data-testid="divReviewItem"><span data-testid="lblItemUlasan">a</span></article>
		<article data-testid="divReviewItem"><span data-testid="lblItemUlasan">b</span></article>
		<article data-testid="divReviewItem"><span data-testid="lblItemUlasan">c</span></article>
	</body></html>`

	data := a.Extract(mustDoc(t, html))
	require.NotNil(t, data.TotalRatings)
	assert.Equal(t, 150, *data.TotalRatings)
	assert.Equal(t, 3, data.TotalReviews)
}

func TestTotalReviewsDefaultsToZero(t *testing.T) {
	a := NewReviewAggregator()

	data := a.Extract(mustDoc(t, `<html><body><p>no reviews rendered</p></body></html>`))
	assert.Equal(t, 0, data.TotalReviews)
	assert.NotNil(t, data.RatingBreakdown)
	assert.Empty(t, data.RatingBreakdown)
	assert.NotNil(t, data.IndividualReviews)
	assert.Empty(t, data.IndividualReviews)
}
