package algo

import (
	"metro-routing/model"
	"metro-routing/utils"
	"sort"
)

// Graph 由扁平事实重建的地铁网络
// 节点是站名 (不是站点 ID), 路由按站名寻址
type Graph struct {
	Nodes   map[string]bool          // 所有出现过的站名, 包括度为 0 的站
	AdjList map[string][]*model.Edge // 邻接表 (站名 -> 边列表), 平行边分别保存
	Skipped int                      // 建图时跳过的无效事实数量

	ids       map[string]string      // 站名 -> 第一个出现的站点 ID
	coords    map[string]model.Point // 站名 -> 第一个可解析的坐标
	geometry  map[string]string      // 线路编码 -> 第一个非空几何 (WKT)
	sequences map[string][]string    // 线路编码 -> 按站序排列的站名
	lines     []string               // 线路编码, 按首次出现顺序
	stations  []string               // 站名, 按首次出现顺序
}

// lineStop 某条线路上某个站名保留的最小站序
type lineStop struct {
	name  string
	order int
}

// NewGraph 创建一个空的图
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]bool),
		AdjList:   make(map[string][]*model.Edge),
		ids:       make(map[string]string),
		coords:    make(map[string]model.Point),
		geometry:  make(map[string]string),
		sequences: make(map[string][]string),
	}
}

// BuildGraph 从事实集合构建网络
// 空输入返回空图, 不视为错误
func BuildGraph(facts []model.StationFact) *Graph {
	g := NewGraph()

	// 1. 按线路分组, 线路内按站名分组, 保留最小站序
	stopsByLine := make(map[string][]*lineStop)
	stopIndex := make(map[string]map[string]*lineStop)

	for _, f := range facts {
		if !f.Valid() {
			g.Skipped++
			continue
		}

		g.addStation(f)

		if f.LineGeometry != "" {
			if _, ok := g.geometry[f.LineCode]; !ok {
				g.geometry[f.LineCode] = f.LineGeometry
			}
		}

		byName, ok := stopIndex[f.LineCode]
		if !ok {
			byName = make(map[string]*lineStop)
			stopIndex[f.LineCode] = byName
			g.lines = append(g.lines, f.LineCode)
		}
		if stop, ok := byName[f.StationName]; ok {
			if f.StopOrder < stop.order {
				stop.order = f.StopOrder
			}
			continue
		}
		stop := &lineStop{name: f.StationName, order: f.StopOrder}
		byName[f.StationName] = stop
		stopsByLine[f.LineCode] = append(stopsByLine[f.LineCode], stop)
	}

	// 2. 按站序排序 (稳定排序, 站序相同按出现顺序), 3. 相邻站之间连边
	for _, code := range g.lines {
		stops := stopsByLine[code]
		sort.SliceStable(stops, func(i, j int) bool {
			return stops[i].order < stops[j].order
		})

		seq := make([]string, len(stops))
		for i, s := range stops {
			seq[i] = s.name
		}
		g.sequences[code] = seq

		for i := 0; i+1 < len(seq); i++ {
			g.addEdge(seq[i], seq[i+1], code)
		}
	}

	return g
}

// addStation 登记节点, 站点 ID 与坐标都是先到先得
func (g *Graph) addStation(f model.StationFact) {
	if !g.Nodes[f.StationName] {
		g.Nodes[f.StationName] = true
		g.stations = append(g.stations, f.StationName)
	}
	if _, ok := g.ids[f.StationName]; !ok {
		g.ids[f.StationName] = f.StationID
	}
	if _, ok := g.coords[f.StationName]; !ok && f.StationGeometry != "" {
		if p, ok := utils.ParsePointWKT(f.StationGeometry); ok {
			g.coords[f.StationName] = p
		}
	}
}

// addEdge 添加一条无向边 (两个方向各存一份)
func (g *Graph) addEdge(a, b, lineCode string) {
	g.AdjList[a] = append(g.AdjList[a], &model.Edge{From: a, To: b, LineCode: lineCode})
	g.AdjList[b] = append(g.AdjList[b], &model.Edge{From: b, To: a, LineCode: lineCode})
}

// HasStation 站名是否在图中
func (g *Graph) HasStation(name string) bool {
	return g.Nodes[name]
}

// StationID 返回站名对应的规范站点 ID
func (g *Graph) StationID(name string) string {
	return g.ids[name]
}

// Coord 返回站点坐标
func (g *Graph) Coord(name string) (model.Point, bool) {
	p, ok := g.coords[name]
	return p, ok
}

// LineGeometry 返回线路的原始 WKT 几何
func (g *Graph) LineGeometry(lineCode string) (string, bool) {
	wkt, ok := g.geometry[lineCode]
	return wkt, ok
}

// Neighbors 返回与站点相邻的边
func (g *Graph) Neighbors(name string) []*model.Edge {
	return g.AdjList[name]
}

// LineSequence 返回线路上按站序排列的站名
func (g *Graph) LineSequence(lineCode string) []string {
	return g.sequences[lineCode]
}

// Lines 返回所有线路编码 (按首次出现顺序)
func (g *Graph) Lines() []string {
	return g.lines
}

// Stations 返回所有站名 (按首次出现顺序)
func (g *Graph) Stations() []string {
	return g.stations
}

// FindNearestStation 找到离给定坐标最近且有坐标的站点
func (g *Graph) FindNearestStation(lat, lng float64) (string, bool) {
	nearest := ""
	minDist := -1.0

	target := model.Point{Lat: lat, Lng: lng}
	for _, name := range g.stations {
		p, ok := g.coords[name]
		if !ok {
			continue
		}
		dist := utils.HaversineDistance(target, p)

		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = name
		}
	}

	return nearest, minDist >= 0
}
