package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordAndStats(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(6 * time.Millisecond)

	s := m.Stats()
	if s.Name != "test" || s.Count != 3 {
		t.Fatalf("stats = %+v", s)
	}
	if s.TotalMs != 12 || s.AvgMs != 4 || s.MaxMs != 6 || s.MinMs != 2 {
		t.Errorf("stats = %+v", s)
	}

	m.Reset()
	if s := m.Stats(); s.Count != 0 || s.MaxMs != 0 || s.MinMs != 0 {
		t.Errorf("after reset = %+v", s)
	}
}

func TestRecord_Concurrent(t *testing.T) {
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Record(time.Duration(n) * time.Microsecond)
		}(i)
	}
	wg.Wait()

	s := m.Stats()
	if s.Count != 50 {
		t.Errorf("count = %d", s.Count)
	}
	if s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("min/max = %v/%v", s.MinMs, s.MaxMs)
	}
}

func TestDisabled(t *testing.T) {
	prev := Enabled()
	SetEnabled(false)
	defer SetEnabled(prev)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Millisecond)
	if m.Count() != 0 {
		t.Error("disabled metrics recorded data")
	}
}

func TestAllTimingStats_OnlyWithData(t *testing.T) {
	prev := Enabled()
	SetEnabled(true)
	defer SetEnabled(prev)
	ResetAll()
	defer ResetAll()

	if got := AllTimingStats(); len(got) != 0 {
		t.Fatalf("expected no stats, got %+v", got)
	}
	Timer(Flatten)()
	got := AllTimingStats()
	if len(got) != 1 || got[0].Name != "flatten" {
		t.Errorf("stats = %+v", got)
	}
	if Timer(nil) == nil {
		t.Error("nil metric should still return a stop func")
	}
}
