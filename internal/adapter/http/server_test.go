package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/uk-accident-dashboard/internal/adapter/http"
	"github.com/couchcryptid/uk-accident-dashboard/internal/dashboard"
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
	"github.com/couchcryptid/uk-accident-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Date(2017, time.June, 5, 8, 30, 0, 0, time.UTC)

func newTestServer(table *domain.AccidentTable) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dashboard.New(table, nil, dashboard.Settings{
		Clock: clockwork.NewFakeClockAt(frozenNow),
		Sampler: &domain.Sampler{NewRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(3, 4))
		}},
	}, logger, observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", d, logger)
}

func scenarioTable() *domain.AccidentTable {
	return domain.NewAccidentTable([]domain.Accident{
		{Index: "0", Severity: domain.Fatal, DayOfWeek: "Monday", SpeedLimit: 30, Casualties: 2, Latitude: 51.5, Longitude: -0.12, District: "Westminster"},
		{Index: "1", Severity: domain.Slight, DayOfWeek: "Monday", SpeedLimit: 30, Casualties: 1, Latitude: 53.48, Longitude: -2.24, District: "Manchester"},
		{Index: "2", Severity: domain.Slight, DayOfWeek: "Tuesday", SpeedLimit: 60, Casualties: 1, Latitude: 55.95, Longitude: -3.19, District: "Edinburgh, City of"},
	})
}

func serve(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type viewsBody struct {
	FilteredRows int       `json:"filtered_rows"`
	GeneratedAt  time.Time `json:"generated_at"`
	Selection    struct {
		Severities []string `json:"severities"`
		Days       []string `json:"days"`
	} `json:"selection"`
	Bar struct {
		Data []struct {
			Type string   `json:"type"`
			Name string   `json:"name"`
			X    []int    `json:"x"`
			Y    []int    `json:"y"`
			Text []string `json:"text"`
		} `json:"data"`
	} `json:"bar"`
	Map struct {
		Data []struct {
			Type       string    `json:"type"`
			Name       string    `json:"name"`
			ShowLegend bool      `json:"showlegend"`
			Lat        []float64 `json:"lat"`
		} `json:"data"`
	} `json:"map"`
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenLoaded(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WithoutDataset(t *testing.T) {
	rec := serve(newTestServer(nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndexPage(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "UK Traffic Accidents")
}

func TestUnknownPath(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptionsEndpoint(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var body dashboard.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []dashboard.Option{{Label: "Fatal", Value: "Fatal"}, {Label: "Slight", Value: "Slight"}}, body.Severities)
	assert.Equal(t, []dashboard.Option{{Label: "Mon", Value: "Monday"}, {Label: "Tue", Value: "Tuesday"}}, body.Days)
}

func TestDatasetsEndpoint(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accidents": 3, "vehicles": 0}`, rec.Body.String())
}

func TestViewsEndpoint_Scenario(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/views?severity=Fatal&severity=Slight&day=Monday")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body viewsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 2, body.FilteredRows)
	assert.Equal(t, frozenNow, body.GeneratedAt)
	assert.Equal(t, []string{"Fatal", "Slight"}, body.Selection.Severities)
	assert.Equal(t, []string{"Monday"}, body.Selection.Days)

	require.Len(t, body.Bar.Data, 2)
	assert.Equal(t, "bar", body.Bar.Data[0].Type)
	assert.Equal(t, "Fatal", body.Bar.Data[0].Name)
	assert.Equal(t, []int{30}, body.Bar.Data[0].X)
	assert.Equal(t, []int{2}, body.Bar.Data[0].Y)
	assert.Equal(t, []string{"Speed Limit: 30mph<br>2 fatal accidents"}, body.Bar.Data[0].Text)
	assert.Equal(t, "Slight", body.Bar.Data[1].Name)
	assert.Equal(t, []string{"Speed Limit: 30mph<br>1 slight accidents"}, body.Bar.Data[1].Text)

	require.Len(t, body.Map.Data, 4)
	assert.Equal(t, "scattermapbox", body.Map.Data[0].Type)
	assert.Equal(t, "Slight", body.Map.Data[0].Name)
	assert.False(t, body.Map.Data[0].ShowLegend)
	assert.True(t, body.Map.Data[1].ShowLegend)
	assert.Equal(t, "Fatal", body.Map.Data[2].Name)
	assert.Equal(t, []float64{51.5}, body.Map.Data[2].Lat)
}

func TestViewsEndpoint_CommaSeparated(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/views?severity=Slight&day=Monday,Tuesday")
	require.Equal(t, http.StatusOK, rec.Code)

	var body viewsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.FilteredRows)
	require.Len(t, body.Bar.Data, 1)
	assert.Equal(t, []int{30, 60}, body.Bar.Data[0].X)
}

func TestViewsEndpoint_EmptySelection(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/views")
	require.Equal(t, http.StatusOK, rec.Code)

	var body viewsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.FilteredRows)
	assert.Empty(t, body.Bar.Data)
	assert.Empty(t, body.Map.Data)
}

func TestViewsEndpoint_UnknownValues(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/views?severity=Catastrophic&day=Monday")
	require.Equal(t, http.StatusOK, rec.Code)

	var body viewsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.FilteredRows)
	require.Len(t, body.Bar.Data, 1)
	assert.Empty(t, body.Bar.Data[0].X)
}

func TestBarPNGEndpoint(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/bar.png?severity=Fatal,Slight&day=Monday")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestBarPNGEndpoint_NothingSelected(t *testing.T) {
	rec := serve(newTestServer(scenarioTable()), "/api/bar.png")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
