package sparql

import (
	"context"
	"errors"
	"fmt"
	"metro-routing/model"
	"metro-routing/utils"
	"strconv"
	"strings"
)

// ErrNotFound 查询没有返回任何结果
var ErrNotFound = errors.New("not found")

// Stations 所有带坐标的站点及其线路
// 没有可解析坐标的站点不返回
func (c *Client) Stations(ctx context.Context) ([]model.Station, error) {
	res, err := c.Select(ctx, stationsQuery)
	if err != nil {
		return nil, err
	}

	stations := make([]model.Station, 0, len(res.Results.Bindings))
	for _, b := range res.Results.Bindings {
		p, ok := utils.ParsePointWKT(b.Value("geometry"))
		if !ok {
			continue
		}
		stations = append(stations, model.Station{
			ID:        b.Value("station"),
			Name:      b.Value("name"),
			Latitude:  &p.Lat,
			Longitude: &p.Lng,
			Lines:     splitLines(b.Value("lines")),
		})
	}
	return stations, nil
}

// Station 单个站点详情, iri 为站点的完整 IRI
func (c *Client) Station(ctx context.Context, iri string) (*model.StationDetails, error) {
	ref, err := iriRef(iri)
	if err != nil {
		return nil, err
	}

	res, err := c.Select(ctx, fmt.Sprintf(stationDetailsTemplate, ref))
	if err != nil {
		return nil, err
	}
	if len(res.Results.Bindings) == 0 {
		return nil, fmt.Errorf("station %s: %w", iri, ErrNotFound)
	}

	b := res.Results.Bindings[0]
	details := &model.StationDetails{
		Station: model.Station{
			ID:    iri,
			Name:  b.Value("name"),
			Lines: splitLines(b.Value("lines")),
		},
		Inaugurated: b.Value("inaugurated"),
	}
	if p, ok := utils.ParsePointWKT(b.Value("geometry")); ok {
		details.Latitude = &p.Lat
		details.Longitude = &p.Lng
	}
	return details, nil
}

// Lines 所有线路
func (c *Client) Lines(ctx context.Context) ([]model.Line, error) {
	res, err := c.Select(ctx, linesQuery)
	if err != nil {
		return nil, err
	}

	lines := make([]model.Line, 0, len(res.Results.Bindings))
	for _, b := range res.Results.Bindings {
		n, _ := strconv.Atoi(b.Value("numStations"))
		lines = append(lines, model.Line{
			ID:          b.Value("line"),
			Code:        b.Value("lineCode"),
			Name:        b.Value("lineName"),
			Color:       model.ColorHex(b.Value("lineColor")),
			AuxColor:    optional(b, "auxColor"),
			Origin:      optional(b, "origin"),
			Destination: optional(b, "destination"),
			NumStations: n,
		})
	}
	return lines, nil
}

// Line 单条线路详情, 站点按站序排列
func (c *Client) Line(ctx context.Context, code string) (*model.LineDetails, error) {
	literal, err := lineCodeLiteral(code)
	if err != nil {
		return nil, err
	}

	res, err := c.Select(ctx, fmt.Sprintf(lineDetailsTemplate, literal))
	if err != nil {
		return nil, err
	}
	bindings := res.Results.Bindings
	if len(bindings) == 0 {
		return nil, fmt.Errorf("line %s: %w", code, ErrNotFound)
	}

	first := bindings[0]
	details := &model.LineDetails{
		Code:        code,
		ID:          first.Value("line"),
		Color:       model.ColorHex(first.Value("lineColor")),
		AuxColor:    first.Value("auxColor"),
		Origin:      first.Value("origin"),
		Destination: first.Value("destination"),
		Stations:    []model.LineStop{},
	}
	for _, b := range bindings {
		if !b.Has("stationName") {
			continue
		}
		order, _ := strconv.Atoi(b.Value("order"))
		details.Stations = append(details.Stations, model.LineStop{Name: b.Value("stationName"), Order: order})
	}
	details.NumStations = len(details.Stations)
	return details, nil
}

// LineGeometries 每条线路的坐标序列, 没有几何的线路不返回
func (c *Client) LineGeometries(ctx context.Context) ([]model.LineGeometry, error) {
	res, err := c.Select(ctx, lineGeometriesQuery)
	if err != nil {
		return nil, err
	}

	geometries := []model.LineGeometry{}
	for _, b := range res.Results.Bindings {
		wkt := b.Value("geometry")
		if wkt == "" {
			continue
		}
		coords := utils.ParseMultiLineStringWKT(wkt)
		if len(coords) == 0 {
			continue
		}
		geometries = append(geometries, model.LineGeometry{
			Code:        b.Value("lineCode"),
			Color:       model.ColorHex(b.Value("lineColor")),
			Coordinates: coords,
		})
	}
	return geometries, nil
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func optional(b Binding, name string) *string {
	if !b.Has(name) {
		return nil
	}
	v := b.Value(name)
	return &v
}
