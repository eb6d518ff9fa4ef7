package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/neo/internal/database"
	"github.com/mesh-intelligence/neo/internal/extract"
	"github.com/mesh-intelligence/neo/internal/write"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, Options{})
}

func newTestRouterWith(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	neos, err := extract.LoadNEOFile("../extract/testdata/neos.csv")
	require.NoError(t, err)
	approaches, err := extract.LoadApproachFile("../extract/testdata/cad.json")
	require.NoError(t, err)
	db, err := database.New(neos, approaches)
	require.NoError(t, err)
	return NewRouter(NewHandler(db), opts)
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

type approachesBody struct {
	Meta struct {
		Count   int    `json:"count"`
		Limit   int    `json:"limit"`
		Filters string `json:"filters"`
	} `json:"meta"`
	Data []write.Record `json:"data"`
}

func decodeApproaches(t *testing.T, w *httptest.ResponseRecorder) approachesBody {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body approachesBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNEOByDesignation(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/v1/neos/433")
	require.Equal(t, http.StatusOK, w.Code)
	var neo neoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neo))
	assert.Equal(t, "Eros", neo.Name)
	assert.Equal(t, 2, neo.Approaches)
	require.NotNil(t, neo.DiameterKM)
	assert.InDelta(t, 16.84, *neo.DiameterKM, 1e-9)

	// Designations with spaces arrive URL-escaped.
	w = get(t, r, "/v1/neos/2020%20AB")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neo))
	assert.Equal(t, "", neo.Name)
	assert.Nil(t, neo.DiameterKM)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/v1/neos/1").Code)
}

func TestNEOByName(t *testing.T) {
	r := newTestRouter(t)

	w := get(t, r, "/v1/neos?name=Apophis")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"designation":"99942"`)
	assert.Contains(t, w.Body.String(), `"potentially_hazardous":true`)

	assert.Equal(t, http.StatusNotFound, get(t, r, "/v1/neos?name=apophis").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/v1/neos").Code)
}

func TestApproachesAll(t *testing.T) {
	body := decodeApproaches(t, get(t, newTestRouter(t), "/v1/approaches"))

	assert.Equal(t, 4, body.Meta.Count)
	assert.Equal(t, DefaultLimit, body.Meta.Limit)
	assert.Equal(t, "all", body.Meta.Filters)
	require.Len(t, body.Data, 4)
	assert.Equal(t, "2020-01-01 00:00", body.Data[0].DatetimeUTC)
	assert.Equal(t, "433", body.Data[0].NEO.Designation)
}

func TestApproachesFiltered(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"on date", "/v1/approaches?date=2020-06-01", []string{"433", "2020 AB"}},
		{"date range", "/v1/approaches?start_date=2020-02-01&end_date=2020-05-31", []string{"99942"}},
		{"max distance", "/v1/approaches?max_distance=0.05", []string{"99942", "433", "2020 AB"}},
		{"velocity band", "/v1/approaches?min_velocity=6&max_velocity=10", []string{"99942", "433"}},
		{"diameter excludes unknown", "/v1/approaches?max_diameter=1", []string{"99942"}},
		{"hazardous", "/v1/approaches?hazardous=true", []string{"99942"}},
		{"not hazardous", "/v1/approaches?hazardous=false", []string{"433", "433", "2020 AB"}},
		{"limit", "/v1/approaches?limit=2", []string{"433", "99942"}},
		{"zero limit is unlimited", "/v1/approaches?limit=0", []string{"433", "99942", "433", "2020 AB"}},
		{"no match", "/v1/approaches?min_distance=1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decodeApproaches(t, get(t, r, tt.target))
			var got []string
			for _, rec := range body.Data {
				got = append(got, rec.NEO.Designation)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), body.Meta.Count)
			assert.NotNil(t, body.Data)
		})
	}
}

func TestApproachesFiltersInMeta(t *testing.T) {
	body := decodeApproaches(t, get(t, newTestRouter(t), "/v1/approaches?max_distance=0.1&hazardous=true"))
	assert.Equal(t, "distance<=0.1 AND hazardous=true", body.Meta.Filters)
}

func TestApproachesBadRequest(t *testing.T) {
	r := newTestRouter(t)

	for _, target := range []string{
		"/v1/approaches?date=06/01/2020",
		"/v1/approaches?min_distance=close",
		"/v1/approaches?max_velocity=-1",
		"/v1/approaches?hazardous=maybe",
		"/v1/approaches?limit=-3",
		"/v1/approaches?limit=ten",
	} {
		t.Run(target, func(t *testing.T) {
			w := get(t, r, target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid criterion")
		})
	}
}

func TestStats(t *testing.T) {
	w := get(t, newTestRouter(t), "/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats database.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, database.Stats{NEOs: 3, Named: 2, Approaches: 4}, stats)
}

func TestRateLimit(t *testing.T) {
	r := newTestRouterWith(t, Options{RateLimit: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, get(t, r, "/v1/stats").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/v1/neos/433").Code)
	w := get(t, r, "/v1/stats")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestReplaceSwapsDatabase(t *testing.T) {
	neos, err := extract.LoadNEOFile("../extract/testdata/neos.csv")
	require.NoError(t, err)
	approaches, err := extract.LoadApproachFile("../extract/testdata/cad.json")
	require.NoError(t, err)
	full, err := database.New(neos, approaches)
	require.NoError(t, err)

	h := NewHandler(full)
	r := NewRouter(h, Options{})
	require.Equal(t, http.StatusOK, get(t, r, "/v1/neos/433").Code)

	empty, err := database.New(nil, nil)
	require.NoError(t, err)
	h.Replace(empty)
	assert.Equal(t, http.StatusNotFound, get(t, r, "/v1/neos/433").Code)
	body := decodeApproaches(t, get(t, r, "/v1/approaches"))
	assert.Zero(t, body.Meta.Count)
}
