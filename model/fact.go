package model

// StationFact 三元组存储返回的一条扁平事实 (站点, 线路, 站序, 几何)
// 同一个站名可能对应多个 StationID (源数据没有完全去重)
type StationFact struct {
	StationID       string `json:"station_id"`
	StationName     string `json:"station_name"`
	LineCode        string `json:"line_code"`
	StopOrder       int    `json:"stop_order"`
	LineGeometry    string `json:"line_geometry,omitempty"`    // MULTILINESTRING WKT, 可能为空
	StationGeometry string `json:"station_geometry,omitempty"` // POINT WKT, 可能为空
}

// Valid 名称和线路编码都不为空才能参与建图
func (f StationFact) Valid() bool {
	return f.StationName != "" && f.LineCode != ""
}

// FactRecord station_facts 表的一行, 用于把 SPARQL 结果快照到数据库
type FactRecord struct {
	ID              uint   `gorm:"primaryKey"`
	StationID       string `gorm:"index;not null"`
	StationName     string `gorm:"index;not null"`
	LineCode        string `gorm:"index;not null"`
	StopOrder       *int
	LineGeometry    string `gorm:"type:text"`
	StationGeometry string `gorm:"type:text"`
}

// TableName gorm 表名
func (FactRecord) TableName() string {
	return "station_facts"
}

// ToFact 转换为建图用的事实; 站序缺失时返回 false
func (r FactRecord) ToFact() (StationFact, bool) {
	if r.StopOrder == nil {
		return StationFact{}, false
	}
	return StationFact{
		StationID:       r.StationID,
		StationName:     r.StationName,
		LineCode:        r.LineCode,
		StopOrder:       *r.StopOrder,
		LineGeometry:    r.LineGeometry,
		StationGeometry: r.StationGeometry,
	}, true
}

// NewFactRecord 由事实生成数据库行
func NewFactRecord(f StationFact) FactRecord {
	order := f.StopOrder
	return FactRecord{
		StationID:       f.StationID,
		StationName:     f.StationName,
		LineCode:        f.LineCode,
		StopOrder:       &order,
		LineGeometry:    f.LineGeometry,
		StationGeometry: f.StationGeometry,
	}
}
