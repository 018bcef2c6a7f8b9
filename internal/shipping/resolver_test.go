package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwp/storescraper/internal/config"
	"github.com/adiwp/storescraper/internal/models"
)

const tariffPageFixture = `<!DOCTYPE html>
<html><body>
<table class="tariff-result">
	<thead><tr><th>Service</th><th>Tarif</th><th>Estimasi</th></tr></thead>
	<tbody>
		<tr><td>REG</td><td>Rp18.000</td><td>2-3 hari</td></tr>
		<tr><td>YES</td><td>Rp32.000</td><td>1 hari</td></tr>
		<tr><td>OKE</td><td></td><td>4-5 hari</td></tr>
		<tr><td></td><td>Rp9.000</td><td>7 hari</td></tr>
	</tbody>
</table>
</body></html>`

func newTestResolver(searchURL, tariffURL string) *Resolver {
	return NewResolver(config.ShippingConfig{
		SearchURL:      searchURL,
		TariffURL:      tariffURL,
		OriginCode:     "CGK10000",
		RequestTimeout: 5 * time.Second,
	})
}

func TestGetRatesHappyPath(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Yogyakarta", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"YGY10000","label":"Yogyakarta"}]`))
	}))
	defer search.Close()

	tariff := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CGK10000", r.URL.Query().Get("from"))
		assert.Equal(t, "YGY10000", r.URL.Query().Get("thru"))
		assert.Equal(t, "1.5", r.URL.Query().Get("weight"))
		w.Write([]byte(tariffPageFixture))
	}))
	defer tariff.Close()

	r := newTestResolver(search.URL, tariff.URL)

	options, err := r.GetRates(context.Background(), "Jl. Mawar I/207, Kota Yogyakarta, D.I. Yogyakarta 55281", "1.5")
	require.NoError(t, err)

	// Rows missing a price or service name are dropped.
	assert.Equal(t, []models.ShippingOption{
		{Service: "REG", Price: 18000, ETD: "2-3 hari"},
		{Service: "YES", Price: 32000, ETD: "1 hari"},
	}, options)
}

func TestGetRatesMissingInputShortCircuits(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	r := newTestResolver(upstream.URL, upstream.URL)

	_, err := r.GetRates(context.Background(), "", "1")
	assert.ErrorIs(t, err, ErrMissingAddress)

	_, err = r.GetRates(context.Background(), "Kota Yogyakarta", "")
	assert.ErrorIs(t, err, ErrMissingWeight)

	_, err = r.GetRates(context.Background(), "Kota Yogyakarta", "abc")
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = r.GetRates(context.Background(), "Kota Yogyakarta", "-2")
	assert.ErrorIs(t, err, ErrInvalidWeight)

	// Validation failures must never reach the carrier.
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetRatesUnresolvableCity(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer upstream.Close()

	r := newTestResolver(upstream.URL, upstream.URL)

	_, err := r.GetRates(context.Background(), "Jl. Melati No. 5", "1")
	assert.ErrorIs(t, err, ErrCityNotResolved)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetRatesDestinationNotFound(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer search.Close()

	r := newTestResolver(search.URL, search.URL)

	_, err := r.GetRates(context.Background(), "Kota Atlantis", "1")
	require.ErrorIs(t, err, ErrDestinationNotFound)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestGetRatesSearchFailureMeansNotFound(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer search.Close()

	r := newTestResolver(search.URL, search.URL)

	// A failing search is indistinguishable from an unknown city.
	_, err := r.GetRates(context.Background(), "Kota Yogyakarta", "1")
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestGetRatesTariffFailure(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"YGY10000","label":"Yogyakarta"}]`))
	}))
	defer search.Close()

	tariff := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tariff.Close()

	r := newTestResolver(search.URL, tariff.URL)

	_, err := r.GetRates(context.Background(), "Kota Yogyakarta", "1")
	assert.ErrorIs(t, err, ErrTariffUnavailable)
}

func TestGetRatesEmptyFeeTable(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"code":"YGY10000","label":"Yogyakarta"}]`))
	}))
	defer search.Close()

	tariff := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Tidak ada hasil</p></body></html>`))
	}))
	defer tariff.Close()

	r := newTestResolver(search.URL, tariff.URL)

	options, err := r.GetRates(context.Background(), "Kota Yogyakarta", "1")
	require.NoError(t, err)
	assert.NotNil(t, options)
	assert.Empty(t, options)
}
