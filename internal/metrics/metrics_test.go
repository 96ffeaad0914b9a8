package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveIndex(10*time.Millisecond, 3, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("Expected registered metric families")
	}
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	New(reg)
}

func TestObserveIndex(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIndex(time.Millisecond, 7, nil)
	if got := testutil.ToFloat64(m.TreeDocuments); got != 7 {
		t.Errorf("TreeDocuments = %v, want 7", got)
	}

	m.ObserveIndex(time.Millisecond, 0, errors.New("boom"))
	if got := testutil.ToFloat64(m.TreeIndexErrors); got != 1 {
		t.Errorf("TreeIndexErrors = %v, want 1", got)
	}
	// a failed index leaves the last document count in place
	if got := testutil.ToFloat64(m.TreeDocuments); got != 7 {
		t.Errorf("TreeDocuments = %v, want 7", got)
	}
}

func TestObserveRejection(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRejection("escape")
	m.ObserveRejection("escape")
	m.ObserveRejection("not_found")

	if got := testutil.ToFloat64(m.PathRejections.WithLabelValues("escape")); got != 2 {
		t.Errorf("escape rejections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PathRejections.WithLabelValues("not_found")); got != 1 {
		t.Errorf("not_found rejections = %v, want 1", got)
	}
}

func TestObserveSearch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSearch(time.Millisecond, 3, nil, false)
	m.ObserveSearch(time.Millisecond, 0, nil, true)
	m.ObserveSearch(time.Millisecond, 0, errors.New("boom"), false)

	tests := []struct {
		resultType string
		want       float64
	}{
		{SearchResultHit, 1},
		{SearchResultEmpty, 1},
		{SearchResultError, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(tt.resultType)); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.resultType, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.SearchCoalesced); got != 1 {
		t.Errorf("SearchCoalesced = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// Just verify none of these panic
	m.ObserveIndex(time.Millisecond, 1, nil)
	m.ObserveRejection("escape")
	m.ObserveSearch(time.Millisecond, 1, nil, true)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRejection("malformed")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `docshelf_path_rejections_total{reason="malformed"} 1`) {
		t.Errorf("Expected rejection counter in scrape output, got:\n%s", body)
	}
}
