package model

// Edge 同一条线路上相邻两站之间的一条连线
// 图是无向多重图: 换乘站之间不同线路的边分别保存, 不合并
type Edge struct {
	From     string `json:"from"`      // 站名
	To       string `json:"to"`        // 站名
	LineCode string `json:"line_code"` // 连接这两站的线路
}

// Point 代表一个经纬度点 (WGS84)
type Point struct {
	Lat float64 `json:"lat"` // 纬度
	Lng float64 `json:"lng"` // 经度
}
