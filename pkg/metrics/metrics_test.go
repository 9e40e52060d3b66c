package metrics

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestString_RendersCountersAndFailures(t *testing.T) {
	m := New()
	atomic.AddInt64(&m.LeadsReceivedTotal, 3)
	atomic.AddInt64(&m.LeadsStoredTotal, 2)
	m.IncFailure("VALIDATION_ERROR")
	m.IncFailure("AIRTABLE_ERROR")
	m.IncFailure("VALIDATION_ERROR")

	out := m.String("ratelimit_tracked_clients=4")

	for _, want := range []string{
		"leads_received_total=3\n",
		"leads_stored_total=2\n",
		`leads_failed_total{code="AIRTABLE_ERROR"}=1` + "\n",
		`leads_failed_total{code="VALIDATION_ERROR"}=2` + "\n",
		"ratelimit_tracked_clients=4\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "AIRTABLE_ERROR") > strings.Index(out, "VALIDATION_ERROR") {
		t.Fatalf("failure codes should be sorted:\n%s", out)
	}
	if m.Failures("VALIDATION_ERROR") != 2 {
		t.Fatalf("unexpected failure count %d", m.Failures("VALIDATION_ERROR"))
	}
}
