package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Metrics holds process-wide counters exposed on /metrics.
type Metrics struct {
	HTTPRequestsTotal int64

	LeadsReceivedTotal int64
	LeadsStoredTotal   int64
	LeadsNotifiedTotal int64

	mu       sync.Mutex
	failures map[string]int64
}

func New() *Metrics {
	return &Metrics{failures: make(map[string]int64)}
}

// IncFailure counts a rejected or failed submission by error code.
func (m *Metrics) IncFailure(code string) {
	m.mu.Lock()
	m.failures[code]++
	m.mu.Unlock()
}

func (m *Metrics) Failures(code string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[code]
}

// String renders the counters as name=value lines. Extra lines (for example
// limiter gauges) are appended verbatim.
func (m *Metrics) String(extra ...string) string {
	var sb strings.Builder
	sb.Grow(256)

	fmt.Fprintf(&sb, "http_requests_total=%d\n", atomic.LoadInt64(&m.HTTPRequestsTotal))
	fmt.Fprintf(&sb, "leads_received_total=%d\n", atomic.LoadInt64(&m.LeadsReceivedTotal))
	fmt.Fprintf(&sb, "leads_stored_total=%d\n", atomic.LoadInt64(&m.LeadsStoredTotal))
	fmt.Fprintf(&sb, "leads_notified_total=%d\n", atomic.LoadInt64(&m.LeadsNotifiedTotal))

	m.mu.Lock()
	codes := make([]string, 0, len(m.failures))
	for code := range m.failures {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(&sb, "leads_failed_total{code=%q}=%d\n", code, m.failures[code])
	}
	m.mu.Unlock()

	for _, line := range extra {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
