// Package geocode resolves free-text US addresses to structured locations via
// the Nominatim search API and reports failures with a typed Kind.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies this tool to the geocoding service.
	DefaultUserAgent = "MassShootingDatabase"
)

// Client geocodes a single query.
type Client interface {
	// Geocode performs one lookup. It returns (nil, nil) when the service
	// found no match. A non-nil error is always a *Error.
	Geocode(ctx context.Context, q Query) (*Location, error)
}

// Query is one structured lookup. Empty fields are left out of the request;
// an all-empty query is still sent.
type Query struct {
	Address string
	City    string
	State   string
}

// Location is the best match for a query.
type Location struct {
	Latitude    float64
	Longitude   float64
	Address     AddressDetail
	DisplayName string
	// Geometry is the match's GeoJSON geometry, nil when none was returned
	// or it could not be decoded.
	Geometry geom.T
}

// AddressDetail holds the address components of a match. Components the
// service did not return are empty.
type AddressDetail struct {
	City       string
	State      string // full name, e.g. "Colorado"
	PostalCode string
}

// Option configures the geocoder.
type Option func(*nominatim)

// WithBaseURL points the client at a different Nominatim instance.
func WithBaseURL(u string) Option {
	return func(n *nominatim) {
		if u != "" {
			n.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(n *nominatim) {
		n.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. An expired timeout surfaces as
// KindTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *nominatim) {
		if d > 0 {
			hc := *n.httpClient
			hc.Timeout = d
			n.httpClient = &hc
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request. Nominatim's
// usage policy requires an identifying value.
func WithUserAgent(ua string) Option {
	return func(n *nominatim) {
		if ua != "" {
			n.userAgent = ua
		}
	}
}

// WithEmail sets the optional contact address Nominatim accepts for heavy users.
func WithEmail(email string) Option {
	return func(n *nominatim) {
		n.email = email
	}
}

// WithCountryCodes restricts matches to a comma-separated list of ISO
// 3166-1 alpha-2 codes. Empty means no restriction.
func WithCountryCodes(codes string) Option {
	return func(n *nominatim) {
		n.countryCodes = codes
	}
}

// WithRateLimit sets the maximum requests per second. Zero or less disables
// pacing.
func WithRateLimit(rps float64) Option {
	return func(n *nominatim) {
		if rps <= 0 {
			n.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		n.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

type nominatim struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	baseURL      string
	userAgent    string
	email        string
	countryCodes string
}

// NewClient creates a Nominatim-backed Client with the given options.
func NewClient(opts ...Option) Client {
	n := &nominatim{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(1, 1), // public instance policy: 1 req/s
		baseURL:      DefaultBaseURL,
		userAgent:    DefaultUserAgent,
		countryCodes: "us",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// GeometryType returns the GeoJSON type of the match geometry ("Point",
// "Polygon", ...), or "" when there is none.
func (l *Location) GeometryType() string {
	if l == nil || l.Geometry == nil {
		return ""
	}
	switch l.Geometry.(type) {
	case *geom.Point:
		return "Point"
	case *geom.LineString:
		return "LineString"
	case *geom.Polygon:
		return "Polygon"
	case *geom.MultiPoint:
		return "MultiPoint"
	case *geom.MultiLineString:
		return "MultiLineString"
	case *geom.MultiPolygon:
		return "MultiPolygon"
	case *geom.GeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// Bounds returns the bounding box of the match geometry, or nil when there is
// none.
func (l *Location) Bounds() *geom.Bounds {
	if l == nil || l.Geometry == nil {
		return nil
	}
	return l.Geometry.Bounds()
}

// IsArea reports whether the match is an area rather than a point. The
// coordinates of an area match are a representative point inside it.
func (l *Location) IsArea() bool {
	switch l.GeometryType() {
	case "Polygon", "MultiPolygon":
		return true
	}
	return false
}

// boundsCentre returns the centre of g's bounding box as latitude, longitude.
func boundsCentre(g geom.T) (float64, float64, bool) {
	if g == nil {
		return 0, 0, false
	}
	b := g.Bounds()
	if b == nil || b.IsEmpty() {
		return 0, 0, false
	}
	return (b.Min(1) + b.Max(1)) / 2, (b.Min(0) + b.Max(0)) / 2, true
}
