package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/John-Robertt/sub2clash/internal/pipeline"
)

// metricsStore holds the process-wide counters served at /metrics.
type metricsStore struct {
	mu sync.Mutex

	httpRequestsTotal uint64
	httpByPattern     map[reqKey]uint64

	appErrors map[errKey]uint64

	conversions       uint64
	base64Payloads    uint64
	proxiesDecoded    uint64
	linesSkipped      uint64
	linesUnrecognized uint64
}

type reqKey struct {
	Pattern string
	Status  int
}

type errKey struct {
	Stage string
	Code  string
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		httpByPattern: make(map[reqKey]uint64),
		appErrors:     make(map[errKey]uint64),
	}
}

var metrics = newMetricsStore()

func metricsIncRequest(pattern string, status int) {
	if status == 0 {
		status = http.StatusOK
	}
	if pattern == "" {
		pattern = "(unknown)"
	}

	metrics.mu.Lock()
	metrics.httpRequestsTotal++
	metrics.httpByPattern[reqKey{Pattern: pattern, Status: status}]++
	metrics.mu.Unlock()
}

func metricsIncAppError(stage, code string) {
	stage = strings.TrimSpace(stage)
	code = strings.TrimSpace(code)
	if stage == "" {
		stage = "(unknown)"
	}
	if code == "" {
		code = "(unknown)"
	}

	metrics.mu.Lock()
	metrics.appErrors[errKey{Stage: stage, Code: code}]++
	metrics.mu.Unlock()
}

func metricsAddConversion(st pipeline.Stats) {
	metrics.mu.Lock()
	metrics.conversions++
	if st.OuterDecoded {
		metrics.base64Payloads++
	}
	metrics.proxiesDecoded += uint64(st.Decoded)
	metrics.linesSkipped += uint64(st.Skipped)
	metrics.linesUnrecognized += uint64(st.Unrecognized)
	metrics.mu.Unlock()
}

type conversionTotals struct {
	Conversions, Base64, Proxies, Skipped, Unrecognized uint64
}

type reqMetric struct {
	reqKey
	N uint64
}

type errMetric struct {
	errKey
	N uint64
}

func metricsSnapshot() (httpTotal uint64, reqs []reqMetric, errs []errMetric, conv conversionTotals) {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()

	httpTotal = metrics.httpRequestsTotal
	conv = conversionTotals{
		Conversions:  metrics.conversions,
		Base64:       metrics.base64Payloads,
		Proxies:      metrics.proxiesDecoded,
		Skipped:      metrics.linesSkipped,
		Unrecognized: metrics.linesUnrecognized,
	}

	reqs = make([]reqMetric, 0, len(metrics.httpByPattern))
	for k, n := range metrics.httpByPattern {
		reqs = append(reqs, reqMetric{reqKey: k, N: n})
	}
	errs = make([]errMetric, 0, len(metrics.appErrors))
	for k, n := range metrics.appErrors {
		errs = append(errs, errMetric{errKey: k, N: n})
	}

	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Pattern != reqs[j].Pattern {
			return reqs[i].Pattern < reqs[j].Pattern
		}
		return reqs[i].Status < reqs[j].Status
	})
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Stage != errs[j].Stage {
			return errs[i].Stage < errs[j].Stage
		}
		return errs[i].Code < errs[j].Code
	})
	return httpTotal, reqs, errs, conv
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	// Prometheus text exposition format.
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	total, reqs, errs, conv := metricsSnapshot()

	var b strings.Builder

	b.WriteString("# HELP sub2clash_http_requests_total Total HTTP requests.\n")
	b.WriteString("# TYPE sub2clash_http_requests_total counter\n")
	b.WriteString("sub2clash_http_requests_total ")
	b.WriteString(strconv.FormatUint(total, 10))
	b.WriteByte('\n')

	b.WriteString("# HELP sub2clash_http_requests_by_pattern_total HTTP requests by ServeMux pattern and status.\n")
	b.WriteString("# TYPE sub2clash_http_requests_by_pattern_total counter\n")
	for _, m := range reqs {
		b.WriteString("sub2clash_http_requests_by_pattern_total{pattern=\"")
		b.WriteString(promLabelEscape(m.Pattern))
		b.WriteString("\",status=\"")
		b.WriteString(strconv.Itoa(m.Status))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(m.N, 10))
		b.WriteByte('\n')
	}

	b.WriteString("# HELP sub2clash_app_errors_total Application errors returned to clients.\n")
	b.WriteString("# TYPE sub2clash_app_errors_total counter\n")
	for _, m := range errs {
		b.WriteString("sub2clash_app_errors_total{stage=\"")
		b.WriteString(promLabelEscape(m.Stage))
		b.WriteString("\",code=\"")
		b.WriteString(promLabelEscape(m.Code))
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(m.N, 10))
		b.WriteByte('\n')
	}

	writeCounter(&b, "sub2clash_conversions_total", "Completed conversions.", conv.Conversions)
	writeCounter(&b, "sub2clash_base64_payloads_total", "Conversions whose payload was base64-wrapped.", conv.Base64)
	writeCounter(&b, "sub2clash_proxies_decoded_total", "Proxy links decoded successfully.", conv.Proxies)
	writeCounter(&b, "sub2clash_links_skipped_total", "ss/vmess links dropped because they failed to decode.", conv.Skipped)
	writeCounter(&b, "sub2clash_lines_unrecognized_total", "Lines that were not ss:// or vmess:// links.", conv.Unrecognized)

	_, _ = fmt.Fprint(w, b.String())
}

func writeCounter(b *strings.Builder, name, help string, v uint64) {
	b.WriteString("# HELP " + name + " " + help + "\n")
	b.WriteString("# TYPE " + name + " counter\n")
	b.WriteString(name + " " + strconv.FormatUint(v, 10) + "\n")
}

func promLabelEscape(s string) string {
	// Prometheus label value escaping: backslash and double quote.
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
