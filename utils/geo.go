package utils

import (
	"math"
	"metro-routing/model"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EarthRadius WGS84 参考椭球长半轴 (米)
const EarthRadius = 6378137.0

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance Haversine 公式 (直接计算两点间球面距离)
// 用于最近站点查找和路段距离展示, 不参与选路
func HaversineDistance(p1, p2 model.Point) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lon1 := DegreesToRadians(p1.Lng)
	lat2 := DegreesToRadians(p2.Lat)
	lon2 := DegreesToRadians(p2.Lng)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlon/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// c = 2 * atan2(√a, √(1-a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// stripCRS 去掉 GeoSPARQL wktLiteral 前面可选的 <crs-iri>
func stripCRS(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") {
		if end := strings.Index(s, ">"); end >= 0 {
			s = strings.TrimSpace(s[end+1:])
		}
	}
	return s
}

// to2D 去掉 Z/M/ZM 维度标记, 每个坐标只保留前两个数值 (经度 纬度)
func to2D(s string) string {
	open := strings.Index(s, "(")
	if open < 0 {
		return s
	}
	head := strings.Fields(s[:open])
	if len(head) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(head[0])
	b.WriteByte(' ')

	start := open
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', ')', ',':
			if fields := strings.Fields(s[start:i]); len(fields) > 0 {
				if len(fields) > 2 {
					fields = fields[:2]
				}
				b.WriteString(strings.Join(fields, " "))
			}
			b.WriteByte(s[i])
			if s[i] == ',' {
				b.WriteByte(' ')
			}
			start = i + 1
		}
	}
	return b.String()
}

// normalizeWKT 交给 orb 解析之前的预处理
func normalizeWKT(s string) string {
	return to2D(stripCRS(s))
}

// ParsePointWKT 解析 POINT WKT, 例如 POINT (2.1072 41.3446)
// WKT 中经度在前, 纬度在后; 允许前面带 CRS IRI
func ParsePointWKT(s string) (model.Point, bool) {
	s = normalizeWKT(s)
	if s == "" || strings.Contains(strings.ToUpper(s), "EMPTY") {
		return model.Point{}, false
	}
	p, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return model.Point{}, false
	}
	return model.Point{Lat: p.Lat(), Lng: p.Lon()}, true
}

// ParseMultiLineStringWKT 解析 MULTILINESTRING (或 LINESTRING) WKT, 返回所有坐标 (按出现顺序展开)
// 无法解析时返回空切片
func ParseMultiLineStringWKT(s string) []model.Point {
	s = normalizeWKT(s)
	if s == "" {
		return []model.Point{}
	}

	mls, err := wkt.UnmarshalMultiLineString(s)
	if err != nil {
		ls, lerr := wkt.UnmarshalLineString(s)
		if lerr != nil {
			return []model.Point{}
		}
		mls = orb.MultiLineString{ls}
	}

	points := make([]model.Point, 0)
	for _, ls := range mls {
		for _, p := range ls {
			points = append(points, model.Point{Lat: p.Lat(), Lng: p.Lon()})
		}
	}
	return points
}
