package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/pagemonitor/internal/domain"
	"github.com/hamed0406/pagemonitor/internal/probe"
)

// fakeSite serves the routes the scenarios need and counts requests.
func fakeSite(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			atomic.AddInt32(&hits, 1)
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<h1>Welcome</h1>"))
	})
	r.Get("/bad", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	r.Get("/plain", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("nothing to see"))
	})
	s := httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s, &hits
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func newAggregator(log *zap.Logger, concurrency int) *Aggregator {
	return NewAggregator(log, probe.NewHTTPChecker(log, 2*time.Second), concurrency)
}

func TestRun_AllHealthy(t *testing.T) {
	s, _ := fakeSite(t)
	log, logs := observed()

	sum, err := newAggregator(log, 1).Run(context.Background(), []domain.EndpointSpec{
		{Name: "Home", URL: s.URL + "/ok"},
	})
	require.NoError(t, err)

	assert.True(t, sum.AllHealthy)
	assert.Empty(t, sum.Failures)
	require.Len(t, sum.Results, 1)

	final := logs.FilterMessage("All pages look healthy").All()
	require.Len(t, final, 1)
	assert.Equal(t, zapcore.InfoLevel, final[0].Level)
}

func TestRun_OneFailureKeepsOrder(t *testing.T) {
	s, _ := fakeSite(t)
	log, logs := observed()

	sum, err := newAggregator(log, 1).Run(context.Background(), []domain.EndpointSpec{
		{Name: "Home", URL: s.URL + "/ok"},
		{Name: "API", URL: s.URL + "/bad"},
	})
	require.NoError(t, err)

	assert.False(t, sum.AllHealthy)
	assert.Equal(t, []domain.Failure{{Name: "API", URL: s.URL + "/bad"}}, sum.Failures)

	final := logs.FilterMessage("One or more pages have issues").All()
	require.Len(t, final, 1)
	assert.Equal(t, zapcore.WarnLevel, final[0].Level)
}

func TestRun_ContentMissing(t *testing.T) {
	s, _ := fakeSite(t)
	log, logs := observed()

	sum, err := newAggregator(log, 1).Run(context.Background(), []domain.EndpointSpec{
		{Name: "Landing", URL: s.URL + "/plain", ExpectedText: "Welcome"},
	})
	require.NoError(t, err)

	require.Len(t, sum.Results, 1)
	assert.False(t, sum.Results[0].Healthy)
	assert.False(t, sum.Results[0].ContentMatched)
	assert.Equal(t, 1, logs.FilterMessageSnippet("[CONTENT MISSING] Landing").Len())
}

func TestRun_FailuresAreExactlyTheUnhealthyInInputOrder(t *testing.T) {
	s, _ := fakeSite(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	endpoints := []domain.EndpointSpec{
		{Name: "A", URL: s.URL + "/bad"},
		{Name: "B", URL: s.URL + "/ok", ExpectedText: "Welcome"},
		{Name: "C", URL: closedURL + "/"},
		{Name: "D", URL: s.URL + "/plain"},
		{Name: "E", URL: s.URL + "/plain", ExpectedText: "Welcome"},
	}
	want := []domain.Failure{
		{Name: "A", URL: s.URL + "/bad"},
		{Name: "C", URL: closedURL + "/"},
		{Name: "E", URL: s.URL + "/plain"},
	}

	for _, n := range []int{1, 3} {
		sum, err := newAggregator(zap.NewNop(), n).Run(context.Background(), endpoints)
		require.NoError(t, err)
		assert.False(t, sum.AllHealthy)
		assert.Equal(t, want, sum.Failures, "concurrency %d", n)
		require.Len(t, sum.Results, len(endpoints))
		for i, r := range sum.Results {
			assert.Equal(t, endpoints[i].Name, r.Name)
			assert.Equal(t, r.Reachable && r.ContentMatched, r.Healthy)
		}
	}
}

func TestRun_ParallelRestoresInputOrder(t *testing.T) {
	// Earlier endpoints finish last.
	chk := probe.CheckerFunc(func(_ context.Context, ep domain.EndpointSpec) domain.CheckResult {
		delay := map[string]time.Duration{"first": 60 * time.Millisecond, "second": 30 * time.Millisecond, "third": 0}
		time.Sleep(delay[ep.Name])
		return domain.CheckResult{Name: ep.Name, URL: ep.URL}
	})
	endpoints := []domain.EndpointSpec{
		{Name: "first", URL: "https://x/1"},
		{Name: "second", URL: "https://x/2"},
		{Name: "third", URL: "https://x/3"},
	}

	sum, err := NewAggregator(zap.NewNop(), chk, 3).Run(context.Background(), endpoints)
	require.NoError(t, err)
	assert.Equal(t, []domain.Failure{
		{Name: "first", URL: "https://x/1"},
		{Name: "second", URL: "https://x/2"},
		{Name: "third", URL: "https://x/3"},
	}, sum.Failures)
}

func TestRun_InvalidEntryAbortsBeforeAnyCheck(t *testing.T) {
	s, hits := fakeSite(t)

	tests := map[string]domain.EndpointSpec{
		"missing name": {URL: s.URL + "/ok"},
		"missing url":  {Name: "API"},
	}
	for name, bad := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newAggregator(zap.NewNop(), 1).Run(context.Background(), []domain.EndpointSpec{
				{Name: "Home", URL: s.URL + "/ok"},
				bad,
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			assert.Equal(t, int32(0), atomic.LoadInt32(hits))
		})
	}
}

func TestRun_UnusableURLFailsOnlyThatCheck(t *testing.T) {
	s, hits := fakeSite(t)
	log, logs := observed()

	for _, bad := range []string{"example.com/health", "/ok", "ftp://example.com/"} {
		sum, err := newAggregator(log, 1).Run(context.Background(), []domain.EndpointSpec{
			{Name: "Home", URL: s.URL + "/ok"},
			{Name: "Typo", URL: bad},
		})
		require.NoError(t, err, bad)

		assert.False(t, sum.AllHealthy)
		assert.Equal(t, []domain.Failure{{Name: "Typo", URL: bad}}, sum.Failures)
		require.Len(t, sum.Results, 2)
		assert.True(t, sum.Results[0].Healthy)
		assert.Nil(t, sum.Results[1].StatusCode)
		assert.NotEmpty(t, sum.Results[1].Error)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	assert.Equal(t, 3, logs.FilterMessageSnippet("[DOWN] Typo").Len())
}

func TestRun_EmptyListIsHealthy(t *testing.T) {
	sum, err := newAggregator(zap.NewNop(), 1).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, sum.AllHealthy)
	assert.Empty(t, sum.Failures)
}
