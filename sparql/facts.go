package sparql

import (
	"context"
	"fmt"
	"metro-routing/model"
	"strconv"

	"go.uber.org/zap"
)

// FetchNetworkFacts 一次性取回整个网络的事实
// 缺少站名/线路编码/站序的行会被跳过, 不会中断整个请求
func (c *Client) FetchNetworkFacts(ctx context.Context) ([]model.StationFact, error) {
	res, err := c.Select(ctx, networkQuery)
	if err != nil {
		return nil, fmt.Errorf("fetch network facts: %w", err)
	}

	facts, skipped := ParseFacts(res.Results.Bindings)
	if skipped > 0 {
		c.logger.Warn("跳过无效的站点事实", zap.Int("skipped", skipped), zap.Int("kept", len(facts)))
	}
	c.logger.Debug("已获取网络事实", zap.Int("facts", len(facts)))
	return facts, nil
}

// ParseFacts 把查询结果转换为事实, 返回被跳过的行数
func ParseFacts(bindings []Binding) ([]model.StationFact, int) {
	facts := make([]model.StationFact, 0, len(bindings))
	skipped := 0

	for _, b := range bindings {
		name := b.Value("stationName")
		lineCode := b.Value("lineCode")
		order, err := strconv.Atoi(b.Value("order"))
		if name == "" || lineCode == "" || err != nil {
			skipped++
			continue
		}

		facts = append(facts, model.StationFact{
			StationID:       b.Value("station"),
			StationName:     name,
			LineCode:        lineCode,
			StopOrder:       order,
			LineGeometry:    b.Value("lineGeometry"),
			StationGeometry: b.Value("stationGeometry"),
		})
	}

	return facts, skipped
}
