package intel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threatsentry/threatsentry/internal/intel"
)

func TestGeoLookup_fullPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/77.246.107.91/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token: got %q", got)
		}
		w.Write([]byte(`{
			"city": "Moscow",
			"region": "Moscow",
			"country": "RU",
			"loc": "55.7522,37.6156",
			"org": "AS000 Example Hosting Provider"
		}`))
	}))
	defer srv.Close()

	c := intel.NewGeoClient("tok", intel.WithGeoBaseURL(srv.URL))
	rec, err := c.Lookup(context.Background(), "77.246.107.91")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Country != "RU" {
		t.Errorf("Country: got %q", rec.Country)
	}
	if rec.Location != "55.7522,37.6156" {
		t.Errorf("Location: got %q", rec.Location)
	}
	if rec.Organization != "AS000 Example Hosting Provider" {
		t.Errorf("Organization: got %q", rec.Organization)
	}
}

func TestGeoLookup_missingFieldsDefaultToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"city": "Amsterdam"}`))
	}))
	defer srv.Close()

	c := intel.NewGeoClient("tok", intel.WithGeoBaseURL(srv.URL))
	rec, err := c.Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.City != "Amsterdam" {
		t.Errorf("City: got %q", rec.City)
	}
	for name, got := range map[string]string{
		"Region":       rec.Region,
		"Country":      rec.Country,
		"Location":     rec.Location,
		"Organization": rec.Organization,
	} {
		if got != intel.Unknown {
			t.Errorf("%s: got %q, want %q", name, got, intel.Unknown)
		}
	}
}

func TestGeoLookup_non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := intel.NewGeoClient("tok", intel.WithGeoBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "1.2.3.4")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != intel.KindStatus {
		t.Errorf("Kind: got %q, want %q", err.Kind, intel.KindStatus)
	}
}

func TestGeoLookup_malformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := intel.NewGeoClient("tok", intel.WithGeoBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "1.2.3.4")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != intel.KindDecode {
		t.Errorf("Kind: got %q, want %q", err.Kind, intel.KindDecode)
	}
}

func TestGeoLookup_timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	hc := &http.Client{Timeout: 20 * time.Millisecond}
	c := intel.NewGeoClient("tok", intel.WithGeoBaseURL(srv.URL), intel.WithGeoHTTPClient(hc))
	_, err := c.Lookup(context.Background(), "1.2.3.4")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if err.Kind != intel.KindTransport {
		t.Errorf("Kind: got %q, want %q", err.Kind, intel.KindTransport)
	}
}
