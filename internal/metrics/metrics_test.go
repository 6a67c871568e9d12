package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestSyncIngesterRecords(t *testing.T) {
	m := NewSyncIngester("")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, syncFetchEventsTotal.WithLabelValues("unknown", "success"), func() {
		m.ObserveFetchEvents(nil, start)
	}); inc != 1 {
		t.Fatalf("expected fetch events counter increment, got %v", inc)
	}

	if errInc := delta(t, syncProcessBatchTotal.WithLabelValues("unknown", "error"), func() {
		m.ObserveProcessBatch(errors.New("boom"), 5, start)
	}); errInc != 1 {
		t.Fatalf("expected process batch error counter increment, got %v", errInc)
	}

	m.ObserveProcessBatch(nil, 3, start)
}

func TestClickhouseRepositoryRecords(t *testing.T) {
	m := NewClickhouseRepository()
	start := time.Now().Add(-500 * time.Millisecond)

	if inc := delta(t, clickhouseRepositoryRequestsTotal.WithLabelValues("products", "testnet", "error"), func() {
		m.Observe("products", "testnet", errors.New("fail"), start)
	}); inc != 1 {
		t.Fatalf("expected repository error counter increment, got %v", inc)
	}

	if inc := delta(t, clickhouseRepositoryRequestsTotal.WithLabelValues("insert_products", "unknown", "success"), func() {
		m.Observe("insert_products", "", nil, start)
	}); inc != 1 {
		t.Fatalf("expected repository success counter increment, got %v", inc)
	}
}

func TestRPCClientRecords(t *testing.T) {
	m := NewRPCClient("")
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, nodeRPCRequestsTotal.WithLabelValues("filter_logs", "unknown", "success"), func() {
		m.Observe("filter_logs", nil, start)
	}); inc != 1 {
		t.Fatalf("expected rpc call counter increment, got %v", inc)
	}

	m.Observe("filter_logs", errors.New("oops"), start)
}
