package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"metro-routing/model"
	"metro-routing/sparql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	stations     []model.Station
	err          error
	stationCalls int
}

func (f *fakeCatalog) Stations(context.Context) ([]model.Station, error) {
	f.stationCalls++
	return f.stations, f.err
}

func (f *fakeCatalog) Station(_ context.Context, iri string) (*model.StationDetails, error) {
	for _, s := range f.stations {
		if s.ID == iri {
			return &model.StationDetails{Station: s}, nil
		}
	}
	return nil, fmt.Errorf("station %s: %w", iri, sparql.ErrNotFound)
}

func (f *fakeCatalog) Lines(context.Context) ([]model.Line, error) {
	return []model.Line{{Code: "1", Color: "#E2001A", NumStations: 2}}, f.err
}

func (f *fakeCatalog) Line(_ context.Context, code string) (*model.LineDetails, error) {
	if code == "bad code" {
		return nil, sparql.ErrInvalidArgument
	}
	if code != "1" {
		return nil, sparql.ErrNotFound
	}
	return &model.LineDetails{Code: "1", Stations: []model.LineStop{{Name: "A", Order: 1}}, NumStations: 1}, nil
}

func (f *fakeCatalog) LineGeometries(context.Context) ([]model.LineGeometry, error) {
	return []model.LineGeometry{{Code: "1", Coordinates: []model.Point{{Lat: 41.3, Lng: 2.1}}}}, f.err
}

func ptr(v float64) *float64 { return &v }

func testStations() []model.Station {
	return []model.Station{
		{ID: "https://data.example.org/station/catalunya", Name: "Catalunya", Latitude: ptr(41.3870), Longitude: ptr(2.1700), Lines: []string{"1", "3"}},
		{ID: "https://data.example.org/station/sants", Name: "Sants Estació", Latitude: ptr(41.3794), Longitude: ptr(2.1407), Lines: []string{"3", "5"}},
	}
}

func newCatalogRouter(cat Catalog, ttl time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCatalogHandler(cat, 16, ttl, zap.NewNop())
	r.GET("/api/stations", h.GetStations)
	r.GET("/api/stations/search", h.SearchStations)
	r.GET("/api/stations/nearest", h.NearestStation)
	r.GET("/api/station/*id", h.GetStation)
	r.GET("/api/lines", h.GetLines)
	r.GET("/api/line/:code", h.GetLine)
	r.GET("/api/line-geometries", h.GetLineGeometries)
	r.GET("/api/examples", h.GetExamples)
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestStationsAreCached(t *testing.T) {
	cat := &fakeCatalog{stations: testStations()}
	r := newCatalogRouter(cat, time.Minute)

	for i := 0; i < 3; i++ {
		if w := serve(r, "/api/stations"); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}
	if cat.stationCalls != 1 {
		t.Errorf("expected one upstream call, got %d", cat.stationCalls)
	}
}

func TestStationsWithoutCache(t *testing.T) {
	cat := &fakeCatalog{stations: testStations()}
	r := newCatalogRouter(cat, 0)
	serve(r, "/api/stations")
	serve(r, "/api/stations")
	if cat.stationCalls != 2 {
		t.Errorf("ttl 0 disables caching, got %d calls", cat.stationCalls)
	}
}

func TestSearchStations(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{stations: testStations()}, time.Minute)

	w := serve(r, "/api/stations/search?q=Sants")
	var body struct {
		Count   int             `json:"count"`
		Results []model.Station `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Results[0].Name != "Sants Estació" {
		t.Errorf("unexpected results %+v", body)
	}

	if w := serve(r, "/api/stations/search"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q should be 400, got %d", w.Code)
	}
}

func TestNearestStation(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{stations: testStations()}, time.Minute)

	w := serve(r, "/api/stations/nearest?lat=41.3800&lng=2.1410")
	var body struct {
		Station  model.Station `json:"station"`
		Distance float64       `json:"distance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Station.Name != "Sants Estació" || body.Distance <= 0 {
		t.Errorf("unexpected nearest %+v", body)
	}

	if w := serve(r, "/api/stations/nearest?lat=abc&lng=2"); w.Code != http.StatusBadRequest {
		t.Errorf("bad lat should be 400, got %d", w.Code)
	}
}

func TestGetStationAndLine(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{stations: testStations()}, time.Minute)

	if w := serve(r, "/api/station/https://data.example.org/station/catalunya"); w.Code != http.StatusOK {
		t.Errorf("expected 200 for known station, got %d: %s", w.Code, w.Body.String())
	}
	if w := serve(r, "/api/station/https://data.example.org/station/none"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown station, got %d", w.Code)
	}
	if w := serve(r, "/api/line/1"); w.Code != http.StatusOK {
		t.Errorf("expected 200 for line 1, got %d", w.Code)
	}
	if w := serve(r, "/api/line/99"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown line, got %d", w.Code)
	}
	if w := serve(r, "/api/line/bad%20code"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid code, got %d", w.Code)
	}
}

func TestCatalogUpstreamFailure(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{err: fmt.Errorf("boom: %w", sparql.ErrUnavailable)}, time.Minute)
	for _, path := range []string{"/api/stations", "/api/lines", "/api/line-geometries"} {
		if w := serve(r, path); w.Code != http.StatusBadGateway {
			t.Errorf("%s: expected 502, got %d", path, w.Code)
		}
	}
}

func TestLinesGeometriesAndExamples(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{}, time.Minute)

	var lines []model.Line
	_ = json.Unmarshal(serve(r, "/api/lines").Body.Bytes(), &lines)
	if len(lines) != 1 || lines[0].Code != "1" {
		t.Errorf("unexpected lines %+v", lines)
	}

	var geoms []model.LineGeometry
	_ = json.Unmarshal(serve(r, "/api/line-geometries").Body.Bytes(), &geoms)
	if len(geoms) != 1 || len(geoms[0].Coordinates) != 1 {
		t.Errorf("unexpected geometries %+v", geoms)
	}

	var examples []model.ExampleQuery
	_ = json.Unmarshal(serve(r, "/api/examples").Body.Bytes(), &examples)
	if len(examples) == 0 {
		t.Error("expected example queries")
	}
}
