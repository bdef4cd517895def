package handler

import (
	"errors"
	"fmt"
	"metro-routing/algo"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 未找到路径时返回给前端的信息
const msgNoRoute = "No route found"

// RouteHandler 路径规划接口
type RouteHandler struct {
	facts FactSource
	log   *zap.Logger
}

// NewRouteHandler 创建路径规划接口
func NewRouteHandler(facts FactSource, log *zap.Logger) *RouteHandler {
	return &RouteHandler{facts: facts, log: log}
}

// RouteQuery GET /api/route 的查询参数
type RouteQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
}

// RouteRequest POST /api/route 请求体
// 站名和坐标二选一, 坐标会被解析为最近的站点
type RouteRequest struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	OriginLat      *float64 `json:"origin_lat,omitempty"`
	OriginLng      *float64 `json:"origin_lng,omitempty"`
	DestinationLat *float64 `json:"destination_lat,omitempty"`
	DestinationLng *float64 `json:"destination_lng,omitempty"`
}

// RouteResponse 找到路径时的响应
// numStations == len(stations), len(lines) == len(segments) == numStations-1
type RouteResponse struct {
	Found        bool                `json:"found"`
	Stations     []algo.RouteStation `json:"stations"`
	Lines        []string            `json:"lines"`
	Segments     []algo.Segment      `json:"segments"`
	Transfers    []algo.Transfer     `json:"transfers"`
	NumStations  int                 `json:"numStations"`
	NumTransfers int                 `json:"numTransfers"`
	Distance     float64             `json:"distance,omitempty"`
}

// RouteNotFound 未找到路径 (正常结果, 不是错误)
type RouteNotFound struct {
	Found bool   `json:"found"`
	Error string `json:"error"`
}

// NewRouteResponse 由规划结果组装响应
func NewRouteResponse(r *algo.Route) RouteResponse {
	return RouteResponse{
		Found:        true,
		Stations:     r.Stations,
		Lines:        r.Lines,
		Segments:     r.Segments,
		Transfers:    r.Transfers,
		NumStations:  r.NumStations(),
		NumTransfers: r.NumTransfers(),
		Distance:     r.Distance,
	}
}

// notFoundMessage 每种未找到的原因对应不同的信息
func notFoundMessage(err error, origin, destination string) string {
	switch {
	case errors.Is(err, algo.ErrUnknownOrigin):
		return fmt.Sprintf("Origin station '%s' not found", origin)
	case errors.Is(err, algo.ErrUnknownDestination):
		return fmt.Sprintf("Destination station '%s' not found", destination)
	default:
		return msgNoRoute
	}
}

// GetRoute 处理 GET /api/route?origin=&destination=
func (h *RouteHandler) GetRoute(c *gin.Context) {
	var q RouteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return
	}
	h.plan(c, RouteRequest{Origin: q.Origin, Destination: q.Destination})
}

// PostRoute 处理 POST /api/route
func (h *RouteHandler) PostRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Origin == "" && (req.OriginLat == nil || req.OriginLng == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin or origin_lat/origin_lng is required"})
		return
	}
	if req.Destination == "" && (req.DestinationLat == nil || req.DestinationLng == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination or destination_lat/destination_lng is required"})
		return
	}
	h.plan(c, req)
}

// plan 获取事实 -> 建图 -> BFS -> 组装响应
func (h *RouteHandler) plan(c *gin.Context, req RouteRequest) {
	facts, err := h.facts.FetchNetworkFacts(c.Request.Context())
	if err != nil {
		h.log.Error("获取网络数据失败", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "network data unavailable", "details": err.Error()})
		return
	}
	if len(facts) == 0 {
		h.log.Error("事实来源没有返回任何数据")
		c.JSON(http.StatusBadGateway, gin.H{"error": "network data unavailable", "details": "fact source returned no facts"})
		return
	}

	g := algo.BuildGraph(facts)
	if g.Skipped > 0 {
		h.log.Warn("建图时跳过无效事实", zap.Int("skipped", g.Skipped))
	}

	origin := resolveStation(g, req.Origin, req.OriginLat, req.OriginLng)
	destination := resolveStation(g, req.Destination, req.DestinationLat, req.DestinationLng)

	route, err := g.FindRoute(origin, destination)
	if err != nil {
		h.log.Info("未找到路径",
			zap.String("origin", origin),
			zap.String("destination", destination),
			zap.Error(err))
		c.JSON(http.StatusOK, RouteNotFound{Found: false, Error: notFoundMessage(err, origin, destination)})
		return
	}

	h.log.Debug("路径规划成功",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Int("stations", route.NumStations()),
		zap.Int("transfers", route.NumTransfers()))
	c.JSON(http.StatusOK, NewRouteResponse(route))
}

// resolveStation 没有站名时用坐标找最近的站点
func resolveStation(g *algo.Graph, name string, lat, lng *float64) string {
	if name != "" || lat == nil || lng == nil {
		return name
	}
	if nearest, ok := g.FindNearestStation(*lat, *lng); ok {
		return nearest
	}
	return fmt.Sprintf("(%.6f, %.6f)", *lat, *lng)
}
