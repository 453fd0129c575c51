package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KaramelBytes/casedash/internal/analysis"
	"github.com/KaramelBytes/casedash/internal/dataset"
	"github.com/KaramelBytes/casedash/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	fc  *geojson.FeatureCollection
	err error
}

func (s staticSource) Fetch(context.Context) (*geojson.FeatureCollection, error) {
	return s.fc, s.err
}

func boundaries() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, name := range []string{"Delhi", "Goa", "Ladakh"} {
		f := geojson.NewFeature(orb.Point{77, 28})
		f.Properties["ST_NM"] = name
		fc.Append(f)
	}
	return fc
}

func tables() (dataset.LegacyTable, dataset.SummaryTable) {
	legacy := dataset.LegacyTable{
		Columns: []string{"Known_To_The_Victims", "Relatives"},
		Rows: []dataset.LegacyRecord{
			{State: "DELHI", Year: 2001, Values: []float64{10, 5}},
			{State: "GOA", Year: 2002, Values: []float64{3, 1}},
		},
	}
	summary := dataset.SummaryTable{Rows: []dataset.SummaryRecord{
		{State: "DELHI", Year: 2016, Cases: 100},
		{State: "KERALA", Year: 2015, Cases: 7},
	}}
	return legacy, summary
}

func createTestServer(src geo.Source) *Server {
	legacy, summary := tables()
	cfg := Config{
		Addr:       ":0",
		FormAction: "https://formsubmit.co/test@example.org",
		Options:    analysis.DefaultOptions(),
	}
	return NewServer(cfg, legacy, summary, src, "test-v1")
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	s := createTestServer(nil)

	rr := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
	assert.NotEmpty(t, rr.Header().Get(TraceIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test-v1", body["version"])
	assert.Equal(t, float64(2), body["legacy_rows"])

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

func TestOptionsEndpoint(t *testing.T) {
	rr := get(t, createTestServer(nil), "/api/options")
	require.Equal(t, http.StatusOK, rr.Code)

	var opts OptionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
	assert.Equal(t, 2001, opts.YearMin)
	assert.Equal(t, 2016, opts.YearMax)
	assert.Equal(t, []string{"DELHI", "GOA", "KERALA"}, opts.States)
	assert.Equal(t, []string{"Known_To_The_Victims", "Relatives"}, opts.Categories)
}

func TestDashboardEndpoint(t *testing.T) {
	s := createTestServer(nil)

	t.Run("Defaults", func(t *testing.T) {
		rr := get(t, s, "/api/dashboard")
		require.Equal(t, http.StatusOK, rr.Code)
		var d analysis.Dashboard
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
		assert.Equal(t, float64(126), d.KPIs.TotalCases)
		assert.Equal(t, "DELHI", d.KPIs.TopState)
		assert.Len(t, d.Tiles, 6)
	})

	t.Run("AllEqualsOmitted", func(t *testing.T) {
		a := get(t, s, "/api/dashboard")
		b := get(t, s, "/api/dashboard?state=all&category=all")
		assert.JSONEq(t, a.Body.String(), b.Body.String())
	})

	t.Run("StateSubset", func(t *testing.T) {
		rr := get(t, s, "/api/dashboard?state=goa&state=kerala&from=2001&to=2016")
		require.Equal(t, http.StatusOK, rr.Code)
		var d analysis.Dashboard
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
		assert.Equal(t, float64(11), d.KPIs.TotalCases)
		assert.Equal(t, []string{"GOA", "KERALA"}, d.Selection.States)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		rr := get(t, s, "/api/dashboard?from=1990&to=1995")
		require.Equal(t, http.StatusOK, rr.Code)
		var d analysis.Dashboard
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
		assert.Equal(t, analysis.MsgNoCases, d.Yearly.Placeholder)
		assert.Equal(t, analysis.NoData, d.KPIs.HighestYear)
	})

	t.Run("InvalidRange", func(t *testing.T) {
		rr := get(t, s, "/api/dashboard?from=2010&to=2000")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid year range")
	})

	t.Run("BadYear", func(t *testing.T) {
		rr := get(t, s, "/api/dashboard?from=abc")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGeoEndpoint(t *testing.T) {
	t.Run("Joined", func(t *testing.T) {
		s := createTestServer(staticSource{fc: boundaries()})
		rr := get(t, s, "/api/geo")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))

		fc, err := geojson.UnmarshalFeatureCollection(rr.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, fc.Features, 3)
		assert.Equal(t, "DELHI", fc.Features[0].Properties["ST_NM"])
		assert.Equal(t, float64(115), fc.Features[0].Properties[geo.TotalCasesProperty])
		assert.Equal(t, float64(0), fc.Features[2].Properties[geo.TotalCasesProperty])
	})

	t.Run("Filtered", func(t *testing.T) {
		s := createTestServer(staticSource{fc: boundaries()})
		rr := get(t, s, "/api/geo?from=2001&to=2013")
		require.Equal(t, http.StatusOK, rr.Code)
		fc, err := geojson.UnmarshalFeatureCollection(rr.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, float64(15), fc.Features[0].Properties[geo.TotalCasesProperty])
	})

	t.Run("FetchFailure", func(t *testing.T) {
		s := createTestServer(staticSource{err: errors.Join(geo.ErrBoundaryFetch, errors.New("dial tcp: timeout"))})
		rr := get(t, s, "/api/geo")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("NoSource", func(t *testing.T) {
		rr := get(t, createTestServer(nil), "/api/geo")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestPage(t *testing.T) {
	s := createTestServer(nil)

	rr := get(t, s, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Key Performance Indicators")
	assert.Contains(t, body, "Total Cases (2001-2016)")
	assert.Contains(t, body, `action="https://formsubmit.co/test@example.org"`)
	assert.Contains(t, body, `name="_captcha" value="false"`)
	assert.Equal(t, 1, strings.Count(body, "<h3>6."))

	assert.Contains(t, body, `<option value="all" selected>All</option>`)
	assert.Contains(t, body, `<option value="DELHI">DELHI</option>`)
	assert.Contains(t, body, `<option value="Known_To_The_Victims">Known_To_The_Victims</option>`)
	assert.Contains(t, body, `<textarea name="message" placeholder="Your message here" required>`)

	rr = get(t, s, "/?from=1990&to=1995")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), analysis.MsgNoCases)
	assert.Contains(t, rr.Body.String(), analysis.MsgNoTrend)

	rr = get(t, s, "/?from=x")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid from")
}

func TestPage_FilterControlsKeepSelection(t *testing.T) {
	s := createTestServer(nil)

	rr := get(t, s, "/?state=goa&category=Relatives")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<select name="state" multiple`)
	assert.Contains(t, body, `<option value="all">All</option>`)
	assert.Contains(t, body, `<option value="GOA" selected>GOA</option>`)
	assert.Contains(t, body, `<option value="DELHI">DELHI</option>`)
	assert.Contains(t, body, `<option value="KERALA">KERALA</option>`)
	assert.Contains(t, body, `<option value="Relatives" selected>Relatives</option>`)
	assert.Contains(t, body, `<option value="Known_To_The_Victims">Known_To_The_Victims</option>`)
}

func TestGeoEndpoint_NoMatchingRowsKeepsEveryFeature(t *testing.T) {
	s := createTestServer(staticSource{fc: boundaries()})
	rr := get(t, s, "/api/geo?from=1900&to=1901")
	require.Equal(t, http.StatusOK, rr.Code)

	fc, err := geojson.UnmarshalFeatureCollection(rr.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Equal(t, float64(0), f.Properties[geo.TotalCasesProperty])
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	legacy, summary := tables()
	s := NewServer(Config{Addr: "127.0.0.1:0"}, legacy, summary, nil, "test-v1")

	done := make(chan error, 1)
	require.NoError(t, s.Shutdown(context.Background()))
	go func() { done <- s.Start() }()
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestServer_StartThenShutdown(t *testing.T) {
	legacy, summary := tables()
	s := NewServer(Config{Addr: "127.0.0.1:0"}, legacy, summary, nil, "test-v1")

	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	require.NoError(t, s.Shutdown(context.Background()))
	assert.ErrorIs(t, <-done, http.ErrServerClosed)
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
}
