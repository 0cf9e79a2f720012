package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	durations  []durationCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type durationCall struct {
	name    string
	seconds float64
	labels  Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveDuration(name string, seconds float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations = append(f.durations, durationCall{name, seconds, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestRecordRun_SuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRun("trees_2015", nil, 2*time.Second)
	RecordRun("air_quality", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.durations) != 2 {
		t.Fatalf("calls = %d counters, %d durations; want 2 each", len(fb.counters), len(fb.durations))
	}

	c0 := fb.counters[0]
	if c0.name != "nycetl_runs_total" || c0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want nycetl_runs_total delta=1", c0)
	}
	if c0.labels["dataset"] != "trees_2015" || c0.labels["status"] != "success" {
		t.Fatalf("counter[0] labels = %v", c0.labels)
	}
	d0 := fb.durations[0]
	if d0.name != "nycetl_run_duration_seconds" || d0.seconds < 1.999 || d0.seconds > 2.001 {
		t.Fatalf("duration[0] = %#v; want ~2.0s", d0)
	}

	c1 := fb.counters[1]
	if c1.labels["dataset"] != "air_quality" || c1.labels["status"] != "failure" {
		t.Fatalf("counter[1] labels = %v", c1.labels)
	}
}

func TestRecordRowsAndBatches(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRows("trees_1995", "read", 3)
	RecordRows("trees_1995", "dropped", 0) // ignored
	RecordRows("trees_1995", "inserted", 5)
	RecordBatches("trees_1995", 2)

	if len(fb.counters) != 3 {
		t.Fatalf("counter calls = %d; want 3", len(fb.counters))
	}
	c0 := fb.counters[0]
	if c0.name != "nycetl_rows_total" || c0.delta != 3 || c0.labels["kind"] != "read" {
		t.Fatalf("counter[0] = %#v", c0)
	}
	c2 := fb.counters[2]
	if c2.name != "nycetl_batches_total" || c2.delta != 2 || c2.labels["dataset"] != "trees_1995" {
		t.Fatalf("counter[2] = %#v", c2)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if backend != fb {
		t.Fatal("SetBackend did not replace the global backend")
	}

	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d; want 1", fb.flushCount)
	}

	SetBackend(nil)
	if backend != fb {
		t.Fatal("SetBackend(nil) must keep the current backend")
	}
}
