package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

const searchPath = "/search"

// nominatimPlace is one element of a jsonv2 search response.
type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	GeoJSON     json.RawMessage  `json:"geojson"`
}

type nominatimAddress struct {
	City       string `json:"city"`
	State      string `json:"state"`
	Postcode   string `json:"postcode"`
	PostalCode string `json:"postal_code"`
}

// nominatimError is the body Nominatim sends instead of a result list when it
// rejects a query.
type nominatimError struct {
	Error any `json:"error"`
}

// Geocode implements Client.
func (n *nominatim) Geocode(ctx context.Context, q Query) (*Location, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		// Wait fails only when ctx ends, or would end, before a token frees up.
		return nil, &Error{Kind: KindTimeout, Detail: "rate limit wait", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.searchURL(q), nil)
	if err != nil {
		return nil, &Error{Kind: KindServiceError, Detail: "build request", Err: err}
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, Classify(eris.Wrap(err, "geocode: request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(eris.Wrap(err, "geocode: read body"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, body)
	}

	return parseSearchResponse(body)
}

func (n *nominatim) searchURL(q Query) string {
	params := url.Values{
		"format":          {"jsonv2"},
		"addressdetails":  {"1"},
		"polygon_geojson": {"1"},
		"limit":           {"1"},
	}
	if v := strings.TrimSpace(q.Address); v != "" {
		params.Set("street", v)
	}
	if v := strings.TrimSpace(q.City); v != "" {
		params.Set("city", v)
	}
	if v := strings.TrimSpace(q.State); v != "" {
		params.Set("state", v)
	}
	if n.countryCodes != "" {
		params.Set("countrycodes", n.countryCodes)
	}
	if n.email != "" {
		params.Set("email", n.email)
	}
	return strings.TrimRight(n.baseURL, "/") + searchPath + "?" + params.Encode()
}

func statusError(resp *http.Response, body []byte) *Error {
	e := &Error{Kind: kindForStatus(resp.StatusCode), StatusCode: resp.StatusCode}
	if e.Kind == KindRateLimited {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			e.Detail = "retry after " + ra
			return e
		}
	}
	if msg := errorMessage(body); msg != "" {
		e.Detail = msg
	}
	return e
}

// parseSearchResponse returns the first place in a jsonv2 search body, or
// nil when the list is empty.
func parseSearchResponse(body []byte) (*Location, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		msg := errorMessage(trimmed)
		if msg == "" {
			msg = "unexpected object response"
		}
		return nil, &Error{Kind: KindServiceError, StatusCode: http.StatusOK, Detail: msg}
	}

	var places []nominatimPlace
	if err := json.Unmarshal(trimmed, &places); err != nil {
		return nil, &Error{Kind: KindServiceError, StatusCode: http.StatusOK, Detail: "parse response", Err: err}
	}
	if len(places) == 0 {
		return nil, nil
	}

	return places[0].location()
}

func (p nominatimPlace) location() (*Location, error) {
	geometry := decodeGeometry(p.GeoJSON)

	var lat, lon float64
	if c1, c2, ok := boundsCentre(geometry); ok && p.Lat == "" && p.Lon == "" {
		lat, lon = c1, c2
	} else {
		var err error
		if lat, err = strconv.ParseFloat(p.Lat, 64); err != nil {
			return nil, &Error{Kind: KindServiceError, StatusCode: http.StatusOK, Detail: "parse latitude " + strconv.Quote(p.Lat), Err: err}
		}
		if lon, err = strconv.ParseFloat(p.Lon, 64); err != nil {
			return nil, &Error{Kind: KindServiceError, StatusCode: http.StatusOK, Detail: "parse longitude " + strconv.Quote(p.Lon), Err: err}
		}
	}

	postal := p.Address.Postcode
	if postal == "" {
		postal = p.Address.PostalCode
	}

	return &Location{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: p.DisplayName,
		Address: AddressDetail{
			City:       p.Address.City,
			State:      p.Address.State,
			PostalCode: postal,
		},
		Geometry: geometry,
	}, nil
}

// decodeGeometry decodes the optional geojson member. A geometry that fails
// to decode is dropped. It only supplies coordinates when lat and lon are
// both missing.
func decodeGeometry(raw json.RawMessage) geom.T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		zap.L().Debug("geocode: discard undecodable geojson", zap.Error(err))
		return nil
	}
	return g
}

func errorMessage(body []byte) string {
	var ne nominatimError
	if err := json.Unmarshal(body, &ne); err != nil || ne.Error == nil {
		return ""
	}
	switch v := ne.Error.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}
