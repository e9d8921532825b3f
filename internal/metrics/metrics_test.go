package metrics

import (
	"errors"
	"testing"
	"time"
)

type capture struct {
	counters   map[string]float64
	histograms map[string][]float64
	labels     map[string]Labels
}

func newCapture() *capture {
	return &capture{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		labels:     make(map[string]Labels),
	}
}

func (c *capture) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
	c.labels[name] = labels
}

func (c *capture) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms[name] = append(c.histograms[name], value)
}

func (c *capture) Flush() error { return nil }

func withBackend(t *testing.T, b Backend) {
	t.Helper()
	prev := backend
	SetBackend(b)
	t.Cleanup(func() { backend = prev })
}

func TestRecordStep(t *testing.T) {
	c := newCapture()
	withBackend(t, c)

	RecordStep("open_sales_lines", "join", nil, 150*time.Millisecond)

	if got := c.counters["openlines_step_total"]; got != 1 {
		t.Fatalf("step counter = %v", got)
	}
	lbls := c.labels["openlines_step_total"]
	if lbls["status"] != "success" || lbls["step"] != "join" || lbls["job"] != "open_sales_lines" {
		t.Fatalf("labels = %v", lbls)
	}
	if got := c.histograms["openlines_step_duration_seconds"]; len(got) != 1 || got[0] != 0.15 {
		t.Fatalf("durations = %v", got)
	}

	RecordStep("open_sales_lines", "join", errors.New("boom"), time.Second)
	if lbls := c.labels["openlines_step_total"]; lbls["status"] != "failure" {
		t.Fatalf("failure labels = %v", lbls)
	}
}

func TestRecordRows(t *testing.T) {
	c := newCapture()
	withBackend(t, c)

	RecordRows("open_sales_lines", "active", 42)
	RecordRows("open_sales_lines", "active", 0)
	RecordRows("open_sales_lines", "active", -1)

	if got := c.counters["openlines_rows_total"]; got != 42 {
		t.Fatalf("rows counter = %v, want 42", got)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	c := newCapture()
	withBackend(t, c)

	SetBackend(nil)
	RecordRows("job", "output", 1)
	if got := c.counters["openlines_rows_total"]; got != 1 {
		t.Fatalf("nil backend replaced the installed one")
	}
}
