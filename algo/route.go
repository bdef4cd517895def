package algo

import (
	"fmt"
	"metro-routing/model"
	"metro-routing/utils"
	"strings"
)

// RouteStation 路径上的一站
type RouteStation struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Segment 一跳的展示信息
// 两端坐标和线路几何都已知时才带几何数据
type Segment struct {
	LineCode  string       `json:"lineCode"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Geometry  string       `json:"geometry,omitempty"`
	FromCoord *model.Point `json:"fromCoord,omitempty"`
	ToCoord   *model.Point `json:"toCoord,omitempty"`
	Distance  float64      `json:"distance,omitempty"` // 两端直线距离 (米), 仅展示用, 有几何时才计算
}

// Transfer 换乘: 相邻两跳的线路不同
type Transfer struct {
	Station  string `json:"station"`
	FromLine string `json:"fromLine"`
	ToLine   string `json:"toLine"`
}

// Route 一次查询的结果, 每次重新计算, 不缓存
type Route struct {
	Stations  []RouteStation
	Lines     []string // 每一跳使用的线路, 比 Stations 少一个
	Segments  []Segment
	Transfers []Transfer
	Distance  float64 // 有几何的路段直线距离之和 (米)
}

// newRoute 由 BFS 得到的站名路径和线路序列组装结果
func (g *Graph) newRoute(path, lines []string) *Route {
	r := &Route{
		Stations:  make([]RouteStation, 0, len(path)),
		Lines:     make([]string, 0, len(lines)),
		Segments:  make([]Segment, 0, len(lines)),
		Transfers: FindTransfers(path, lines),
	}
	r.Lines = append(r.Lines, lines...)

	for _, name := range path {
		r.Stations = append(r.Stations, RouteStation{Name: name, ID: g.StationID(name)})
	}

	for i, lineCode := range lines {
		seg := g.segment(path[i], path[i+1], lineCode)
		r.Distance += seg.Distance
		r.Segments = append(r.Segments, seg)
	}

	return r
}

// segment 构建一跳的路段信息
func (g *Graph) segment(from, to, lineCode string) Segment {
	seg := Segment{LineCode: lineCode, From: from, To: to}

	fromCoord, okFrom := g.Coord(from)
	toCoord, okTo := g.Coord(to)
	if !okFrom || !okTo {
		return seg
	}
	wkt, ok := g.LineGeometry(lineCode)
	if !ok {
		return seg
	}

	seg.Geometry = wkt
	seg.FromCoord = &fromCoord
	seg.ToCoord = &toCoord
	seg.Distance = utils.HaversineDistance(fromCoord, toCoord)
	return seg
}

// FindTransfers 扫描线路序列, 线路变化处记为一次换乘
// 换乘站是两跳之间的那一站, 即 path[i]
func FindTransfers(path, lines []string) []Transfer {
	transfers := []Transfer{}
	for i := 1; i < len(lines); i++ {
		if lines[i] != lines[i-1] {
			transfers = append(transfers, Transfer{
				Station:  path[i],
				FromLine: lines[i-1],
				ToLine:   lines[i],
			})
		}
	}
	return transfers
}

// NumStations 路径站数
func (r *Route) NumStations() int {
	return len(r.Stations)
}

// NumTransfers 换乘次数
func (r *Route) NumTransfers() int {
	return len(r.Transfers)
}

// FormatRoute 格式化路径结果为可读字符串
func FormatRoute(r *Route) string {
	if r == nil {
		return "No route found\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stations: %d, transfers: %d\n", r.NumStations(), r.NumTransfers())
	if r.Distance > 0 {
		fmt.Fprintf(&b, "Distance: %.2f km\n", r.Distance/1000)
	}

	transferAt := make(map[string]Transfer, len(r.Transfers))
	for _, t := range r.Transfers {
		transferAt[t.Station] = t
	}

	for i, st := range r.Stations {
		line := ""
		if i < len(r.Lines) {
			line = " [" + r.Lines[i] + "]"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, st.Name, line)
		if t, ok := transferAt[st.Name]; ok {
			fmt.Fprintf(&b, "   transfer %s -> %s\n", t.FromLine, t.ToLine)
		}
	}

	return b.String()
}
