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

const defaultVTBase = "https://www.virustotal.com"

// VTClient queries the VirusTotal API: the v2 ip-address report for
// communicating samples and the v3 files object for hash lookups.
type VTClient struct {
	base       string
	apiKey     string
	httpClient *http.Client
}

// VTOption configures a VTClient.
type VTOption func(*VTClient)

// WithVTBaseURL overrides the vendor base URL (tests).
func WithVTBaseURL(base string) VTOption {
	return func(c *VTClient) { c.base = base }
}

// WithVTHTTPClient overrides the underlying http.Client.
func WithVTHTTPClient(hc *http.Client) VTOption {
	return func(c *VTClient) { c.httpClient = hc }
}

// NewVTClient creates a VTClient authenticated with apiKey.
func NewVTClient(apiKey string, opts ...VTOption) *VTClient {
	c := &VTClient{
		base:       defaultVTBase,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// commSample is one entry in the v2 report's communicating-samples lists.
type commSample struct {
	SHA256 string `json:"sha256"`
}

// ipReportPayload is the subset of the v2 ip-address report we consume.
type ipReportPayload struct {
	ResponseCode                 int          `json:"response_code"`
	DetectedCommunicatingSamples []commSample `json:"detected_communicating_samples"`
	UndetectedCommSamples        []commSample `json:"undetected_communicating_samples"`
}

// IPReport fetches the v2 ip-address report and returns the hashes of
// detected and undetected communicating samples. Empty lists are valid.
func (c *VTClient) IPReport(ctx context.Context, ip string) (IntelRecord, *Error) {
	u := fmt.Sprintf("%s/vtapi/v2/ip-address/report?apikey=%s&ip=%s",
		c.base, url.QueryEscape(c.apiKey), url.QueryEscape(ip))

	body, apiErr := c.get(ctx, u, nil)
	if apiErr != nil {
		return IntelRecord{}, apiErr
	}

	var p ipReportPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return IntelRecord{}, errorf(KindDecode, "malformed ip report: %v", err)
	}
	if p.ResponseCode == 0 {
		return IntelRecord{}, errorf(KindNotFound, "no report for ip %s", ip)
	}

	return IntelRecord{
		IP:                ip,
		DetectedSamples:   sampleHashes(p.DetectedCommunicatingSamples),
		UndetectedSamples: sampleHashes(p.UndetectedCommSamples),
	}, nil
}

// filePayload is the subset of the v3 files object we consume.
type filePayload struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Undetected int `json:"undetected"`
				Harmless   int `json:"harmless"`
			} `json:"last_analysis_stats"`
			FirstSubmissionDate int64  `json:"first_submission_date"`
			LastSubmissionDate  int64  `json:"last_submission_date"`
			TypeDescription     string `json:"type_description"`
			Reputation          int    `json:"reputation"`
		} `json:"attributes"`
	} `json:"data"`
}

// FileReport fetches the v3 files object for hash and normalizes the
// detection summary, submission timestamps, file type, and reputation.
func (c *VTClient) FileReport(ctx context.Context, hash string) (MalwareRecord, *Error) {
	u := fmt.Sprintf("%s/api/v3/files/%s", c.base, url.PathEscape(hash))

	body, apiErr := c.get(ctx, u, map[string]string{"x-apikey": c.apiKey})
	if apiErr != nil {
		if apiErr.Kind == KindStatus && apiErr.status == http.StatusNotFound {
			return MalwareRecord{}, errorf(KindNotFound, "no malware information found for %s", hash)
		}
		return MalwareRecord{}, apiErr
	}

	var p filePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return MalwareRecord{}, errorf(KindDecode, "malformed file report: %v", err)
	}

	attrs := p.Data.Attributes
	stats := attrs.LastAnalysisStats
	total := stats.Malicious + stats.Suspicious + stats.Undetected + stats.Harmless

	return MalwareRecord{
		Hash:          hash,
		DetectionRate: fmt.Sprintf("%d/%d", stats.Malicious, total),
		FirstSeen:     unixString(attrs.FirstSubmissionDate),
		LastSeen:      unixString(attrs.LastSubmissionDate),
		FileType:      orUnknown(attrs.TypeDescription),
		Reputation:    attrs.Reputation,
	}, nil
}

// get performs a single GET with the fixed lookup timeout and returns the
// response body, or *Error on transport / non-2xx failure.
func (c *VTClient) get(ctx context.Context, u string, headers map[string]string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errorf(KindTransport, "build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorf(KindTransport, "virustotal request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errorf(KindTransport, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := errorf(KindStatus, "virustotal returned %d", resp.StatusCode)
		e.status = resp.StatusCode
		return nil, e
	}
	return body, nil
}

func sampleHashes(samples []commSample) []string {
	hashes := make([]string, 0, len(samples))
	for _, s := range samples {
		hashes = append(hashes, s.SHA256)
	}
	return hashes
}

func unixString(ts int64) string {
	if ts == 0 {
		return Unknown
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
