package httpapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestMetrics_CountsRequestsAndErrors(t *testing.T) {
	metrics = newMetricsStore()
	up := newUpstream(t, ssNode1+"\nnot-a-link\n"+badSSLine+"\n")
	defer up.Close()
	h := NewHandler()

	// 1) ok request
	{
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("healthz status=%d body=%q", rr.Code, rr.Body.String())
		}
	}

	// 2) error request
	{
		req := httptest.NewRequest(http.MethodGet, "/", nil) // missing url
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("convert status=%d body=%q", rr.Code, rr.Body.String())
		}
	}

	// 3) conversion
	{
		req := httptest.NewRequest(http.MethodGet, "/?url="+url.QueryEscape(up.URL), nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("convert status=%d body=%q", rr.Code, rr.Body.String())
		}
	}

	// 4) metrics snapshot (note: /metrics request itself isn't counted inside its own response).
	{
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("metrics status=%d body=%q", rr.Code, rr.Body.String())
		}

		body := rr.Body.String()
		for _, want := range []string{
			"sub2clash_http_requests_total 3\n",
			`pattern="GET /healthz",status="200"} 1`,
			`pattern="GET /",status="400"} 1`,
			`pattern="GET /",status="200"} 1`,
			`sub2clash_app_errors_total{stage="validate_request",code="MISSING_URL"} 1`,
			"sub2clash_conversions_total 1\n",
			"sub2clash_proxies_decoded_total 1\n",
			"sub2clash_links_skipped_total 1\n",
			"sub2clash_lines_unrecognized_total 1\n",
		} {
			if !strings.Contains(body, want) {
				t.Fatalf("metrics body missing %q, got:\n%s", want, body)
			}
		}
	}
}
