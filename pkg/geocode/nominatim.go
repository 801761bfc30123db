package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/httpclient"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocoder resolves place names through OpenStreetMap's Nominatim.
// The service's usage policy demands an identifying User-Agent, a contact
// email, and at most one request per second; the limiter enforces the last
// across every caller sharing this instance.
type NominatimGeocoder struct {
	client  *httpclient.HTTPClient
	limiter *rate.Limiter
	email   string
	baseURL string
}

// NewNominatimGeocoder creates a rate-limited Nominatim geocoder. The email
// identifies the deployment to the service operators.
func NewNominatimGeocoder(email string) *NominatimGeocoder {
	return &NominatimGeocoder{
		client:  httpclient.NewIdentifiedClient("DisasterScout/1.0"),
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		email:   email,
		baseURL: nominatimSearchURL,
	}
}

// newNominatimGeocoderWithURL creates a geocoder with a custom endpoint and
// no rate limit, for tests.
func newNominatimGeocoderWithURL(email, baseURL string) *NominatimGeocoder {
	g := NewNominatimGeocoder(email)
	g.baseURL = baseURL
	g.limiter = rate.NewLimiter(rate.Inf, 1)
	return g
}

// Resolve looks up the specific name first, then the fallback, but only
// when the fallback is a genuinely different string. Unresolvable names
// yield (nil, nil).
func (g *NominatimGeocoder) Resolve(ctx context.Context, name, fallback string) (*domain.GeoPoint, error) {
	point, err := g.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if point != nil {
		return point, nil
	}

	if fallback == "" || fallback == name {
		return nil, nil
	}
	log.Printf("Geocoding found nothing for %q, falling back to %q", name, fallback)
	return g.lookup(ctx, fallback)
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) lookup(ctx context.Context, name string) (*domain.GeoPoint, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if g.email != "" {
		params.Set("email", g.email)
	}

	resp, err := g.client.Get(ctx, g.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("call nominatim: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nominatim response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	point := domain.NewGeoPoint(lon, lat)
	return &point, nil
}
