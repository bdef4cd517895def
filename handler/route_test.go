package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"metro-routing/model"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeFacts struct {
	facts []model.StationFact
	err   error
	calls int
}

func (f *fakeFacts) FetchNetworkFacts(context.Context) ([]model.StationFact, error) {
	f.calls++
	return f.facts, f.err
}

func networkFacts() []model.StationFact {
	return []model.StationFact{
		{StationID: "urn:a", StationName: "A", LineCode: "L1", StopOrder: 1, StationGeometry: "POINT (2.10 41.30)", LineGeometry: "MULTILINESTRING ((2.10 41.30, 2.12 41.32))"},
		{StationID: "urn:b", StationName: "B", LineCode: "L1", StopOrder: 2, StationGeometry: "POINT (2.11 41.31)"},
		{StationID: "urn:c", StationName: "C", LineCode: "L1", StopOrder: 3, StationGeometry: "POINT (2.12 41.32)"},
		{StationID: "urn:c2", StationName: "C", LineCode: "L2", StopOrder: 1},
		{StationID: "urn:d", StationName: "D", LineCode: "L2", StopOrder: 2},
		{StationID: "urn:e", StationName: "E", LineCode: "L2", StopOrder: 3},
		{StationID: "urn:x", StationName: "X", LineCode: "L9", StopOrder: 1},
		{StationID: "urn:y", StationName: "Y", LineCode: "L9", StopOrder: 2},
	}
}

func newRouteRouter(src FactSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRouteHandler(src, zap.NewNop())
	r.GET("/api/route", h.GetRoute)
	r.POST("/api/route", h.PostRoute)
	return r
}

func getRoute(t *testing.T, r *gin.Engine, origin, destination string) *httptest.ResponseRecorder {
	t.Helper()
	q := url.Values{"origin": {origin}, "destination": {destination}}
	req := httptest.NewRequest(http.MethodGet, "/api/route?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRouteFound(t *testing.T) {
	src := &fakeFacts{facts: networkFacts()}
	w := getRoute(t, newRouteRouter(src), "A", "E")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !resp.Found {
		t.Fatal("expected found")
	}
	var names []string
	for _, s := range resp.Stations {
		names = append(names, s.Name)
	}
	if !reflect.DeepEqual(names, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("unexpected stations %v", names)
	}
	if resp.Stations[2].ID != "urn:c" {
		t.Errorf("canonical id should be first observed, got %q", resp.Stations[2].ID)
	}
	if !reflect.DeepEqual(resp.Lines, []string{"L1", "L1", "L2", "L2"}) {
		t.Errorf("unexpected lines %v", resp.Lines)
	}
	if resp.NumStations != len(resp.Stations) || len(resp.Lines) != resp.NumStations-1 || len(resp.Segments) != resp.NumStations-1 {
		t.Errorf("shape mismatch: %+v", resp)
	}
	if resp.NumTransfers != 1 || resp.Transfers[0].Station != "C" || resp.Transfers[0].FromLine != "L1" || resp.Transfers[0].ToLine != "L2" {
		t.Errorf("unexpected transfers %+v", resp.Transfers)
	}
	if resp.Segments[0].Geometry == "" || resp.Segments[0].FromCoord == nil {
		t.Errorf("first segment should carry geometry: %+v", resp.Segments[0])
	}
	if resp.Segments[3].Geometry != "" {
		t.Errorf("L2 has no geometry: %+v", resp.Segments[3])
	}
	if src.calls != 1 {
		t.Errorf("facts should be fetched once per request, got %d", src.calls)
	}
}

func TestGetRouteSameStation(t *testing.T) {
	w := getRoute(t, newRouteRouter(&fakeFacts{facts: networkFacts()}), "B", "B")

	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["found"] != true || raw["numStations"].(float64) != 1 || raw["numTransfers"].(float64) != 0 {
		t.Errorf("unexpected response %v", raw)
	}
	// 空数组而不是 null
	if lines, ok := raw["lines"].([]interface{}); !ok || len(lines) != 0 {
		t.Errorf("lines should be an empty array, got %v", raw["lines"])
	}
	if segs, ok := raw["segments"].([]interface{}); !ok || len(segs) != 0 {
		t.Errorf("segments should be an empty array, got %v", raw["segments"])
	}
}

func TestGetRouteNotFound(t *testing.T) {
	tests := []struct {
		name        string
		origin, dst string
		want        string
	}{
		{"unknown origin", "Unknown", "A", "Origin station 'Unknown' not found"},
		{"unknown destination", "A", "Unknown", "Destination station 'Unknown' not found"},
		{"disjoint", "A", "Y", "No route found"},
	}
	r := newRouteRouter(&fakeFacts{facts: networkFacts()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getRoute(t, r, tt.origin, tt.dst)
			if w.Code != http.StatusOK {
				t.Fatalf("negative results are not HTTP errors, got %d", w.Code)
			}
			var resp RouteNotFound
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Found || resp.Error != tt.want {
				t.Errorf("got %+v, want error %q", resp, tt.want)
			}
		})
	}
}

func TestGetRouteDataUnavailable(t *testing.T) {
	for name, src := range map[string]*fakeFacts{
		"fetch error": {err: errors.New("connection refused")},
		"no facts":    {},
	} {
		t.Run(name, func(t *testing.T) {
			w := getRoute(t, newRouteRouter(src), "A", "B")
			if w.Code != http.StatusBadGateway {
				t.Fatalf("expected 502, got %d", w.Code)
			}
			var body map[string]interface{}
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != "network data unavailable" {
				t.Errorf("unexpected body %v", body)
			}
		})
	}
}

func TestGetRouteMissingParams(t *testing.T) {
	r := newRouteRouter(&fakeFacts{facts: networkFacts()})
	req := httptest.NewRequest(http.MethodGet, "/api/route?origin=A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPostRouteByCoordinates(t *testing.T) {
	lat, lng := 41.3001, 2.1001
	body, _ := json.Marshal(RouteRequest{OriginLat: &lat, OriginLng: &lng, Destination: "C"})

	req := httptest.NewRequest(http.MethodPost, "/api/route", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouteRouter(&fakeFacts{facts: networkFacts()}).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Found || resp.Stations[0].Name != "A" || resp.NumStations != 3 {
		t.Errorf("origin should resolve to A, got %+v", resp)
	}
}

func TestPostRouteValidation(t *testing.T) {
	r := newRouteRouter(&fakeFacts{facts: networkFacts()})
	for _, body := range []string{`{"destination": "A"}`, `{"origin": "A"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/route", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}
