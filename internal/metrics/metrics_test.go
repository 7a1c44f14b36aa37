package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("failed to create collector: %v", err)
	}

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.ObserveLoad(10*time.Millisecond, nil)
	c.ObserveArtifact("pdf", time.Millisecond, nil)
	c.ObserveArtifact("pdf", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %f", got)
	}
	if got := testutil.ToFloat64(c.cacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %f", got)
	}
	if got := testutil.ToFloat64(c.artifacts.WithLabelValues("pdf", "error")); got != 1 {
		t.Errorf("expected 1 failed pdf, got %f", got)
	}
	if n := testutil.CollectAndCount(c.loadDuration); n == 0 {
		t.Error("expected load histogram to be collected")
	}
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.CacheHit()
	c.CacheMiss()
	c.CacheError()
	c.ObserveLoad(time.Second, nil)
	c.ObserveArtifact("csv", time.Second, nil)
}
