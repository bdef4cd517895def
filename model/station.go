package model

// Station 站点目录信息 (/api/stations)
type Station struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lines     []string `json:"lines"`
}

// StationDetails 单个站点详情
type StationDetails struct {
	Station
	Inaugurated string `json:"inaugurated"`
}

// Line 线路目录信息 (/api/lines)
type Line struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	AuxColor    *string `json:"auxColor"`
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	NumStations int     `json:"numStations"`
}

// LineStop 线路详情中的一站
type LineStop struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// LineDetails 单条线路详情, 站点按站序排列
type LineDetails struct {
	Code        string     `json:"code"`
	ID          string     `json:"id"`
	Color       string     `json:"color"`
	AuxColor    string     `json:"auxColor"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Stations    []LineStop `json:"stations"`
	NumStations int        `json:"numStations"`
}

// LineGeometry 线路走向, 由 MULTILINESTRING 解析得到
type LineGeometry struct {
	Code        string  `json:"code"`
	Color       string  `json:"color"`
	Coordinates []Point `json:"coordinates"`
}

// ExampleQuery 示例 SPARQL 查询
type ExampleQuery struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Query       string `json:"query"`
}

// DefaultLineColor 三元组中没有颜色时使用
const DefaultLineColor = "999"

// ColorHex 补上 # 前缀
func ColorHex(c string) string {
	if c == "" {
		c = DefaultLineColor
	}
	return "#" + c
}
