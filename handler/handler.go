package handler

import (
	"context"
	"errors"
	"metro-routing/model"
	"metro-routing/sparql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FactSource 路径规划使用的事实来源 (SPARQL 端点或数据库快照)
// 每次查询都重新获取, 不缓存
type FactSource interface {
	FetchNetworkFacts(ctx context.Context) ([]model.StationFact, error)
}

// Catalog 站点/线路目录查询
type Catalog interface {
	Stations(ctx context.Context) ([]model.Station, error)
	Station(ctx context.Context, iri string) (*model.StationDetails, error)
	Lines(ctx context.Context) ([]model.Line, error)
	Line(ctx context.Context, code string) (*model.LineDetails, error)
	LineGeometries(ctx context.Context) ([]model.LineGeometry, error)
}

// Endpoint SPARQL 代理与健康检查使用的端点
type Endpoint interface {
	Query(ctx context.Context, query, format string) (*sparql.Response, error)
	Ping(ctx context.Context) error
	Endpoint() string
}

// upstreamStatus 把上游错误映射为 HTTP 状态码
func upstreamStatus(err error) int {
	var se *sparql.StatusError
	switch {
	case errors.Is(err, sparql.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sparql.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &se) && se.StatusCode < 500:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// abortUpstream 返回上游错误
func abortUpstream(c *gin.Context, msg string, err error) {
	status := upstreamStatus(err)
	if status == http.StatusNotFound {
		c.JSON(status, gin.H{"error": msg + ": not found"})
		return
	}
	c.JSON(status, gin.H{"error": msg, "details": err.Error()})
}
