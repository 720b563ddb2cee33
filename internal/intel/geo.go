package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultGeoBase = "https://ipinfo.io"

// lookupTimeout bounds every vendor HTTP call. Timeouts are reported as
// a transport error, not retried.
const lookupTimeout = 10 * time.Second

// GeoClient looks up IP geolocation via the ipinfo.io JSON API.
type GeoClient struct {
	base       string
	token      string
	httpClient *http.Client
}

// GeoOption configures a GeoClient.
type GeoOption func(*GeoClient)

// WithGeoBaseURL overrides the vendor base URL (tests).
func WithGeoBaseURL(base string) GeoOption {
	return func(c *GeoClient) { c.base = base }
}

// WithGeoHTTPClient overrides the underlying http.Client.
func WithGeoHTTPClient(hc *http.Client) GeoOption {
	return func(c *GeoClient) { c.httpClient = hc }
}

// NewGeoClient creates a GeoClient authenticated with token.
func NewGeoClient(token string, opts ...GeoOption) *GeoClient {
	c := &GeoClient{
		base:       defaultGeoBase,
		token:      token,
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geoPayload mirrors the vendor response; every key may be absent.
type geoPayload struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
	Org     string `json:"org"`
}

// Lookup fetches GET {base}/{ip}/json?token={key} and normalizes the
// response. Missing fields become "Unknown"; any failure returns *Error.
func (c *GeoClient) Lookup(ctx context.Context, ip string) (GeoRecord, *Error) {
	u := fmt.Sprintf("%s/%s/json?token=%s", c.base, url.PathEscape(ip), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return GeoRecord{}, errorf(KindTransport, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GeoRecord{}, errorf(KindTransport, "geolocation lookup failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GeoRecord{}, errorf(KindTransport, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return GeoRecord{}, errorf(KindStatus, "geolocation vendor returned %d", resp.StatusCode)
	}

	var p geoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return GeoRecord{}, errorf(KindDecode, "malformed geolocation response: %v", err)
	}

	return GeoRecord{
		IP:           ip,
		City:         orUnknown(p.City),
		Region:       orUnknown(p.Region),
		Country:      orUnknown(p.Country),
		Location:     orUnknown(p.Loc),
		Organization: orUnknown(p.Org),
	}, nil
}
