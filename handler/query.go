package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pingTimeout 健康检查等待端点的时间
const pingTimeout = 5 * time.Second

// QueryHandler SPARQL 代理和健康检查
type QueryHandler struct {
	endpoint Endpoint
	log      *zap.Logger
}

// NewQueryHandler 创建代理接口
func NewQueryHandler(endpoint Endpoint, log *zap.Logger) *QueryHandler {
	return &QueryHandler{endpoint: endpoint, log: log}
}

// QueryRequest SPARQL 代理请求
type QueryRequest struct {
	Query  string `json:"query" binding:"required"`
	Format string `json:"format"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Backend        string `json:"backend"`
	SPARQLEndpoint string `json:"sparql_endpoint"`
	SPARQLStatus   string `json:"sparql_status"`
}

// Query 执行任意 SPARQL 查询并原样返回结果
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	resp, err := h.endpoint.Query(c.Request.Context(), req.Query, req.Format)
	if err != nil {
		h.log.Warn("SPARQL 代理查询失败", zap.Error(err))
		c.JSON(upstreamStatus(err), gin.H{
			"error":    "failed to execute SPARQL query",
			"details":  err.Error(),
			"endpoint": h.endpoint.Endpoint(),
		})
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, resp.Body)
}

// Health 检查后端以及 SPARQL 端点的状态
func (h *QueryHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	status := HealthResponse{
		Backend:        "ok",
		SPARQLEndpoint: h.endpoint.Endpoint(),
		SPARQLStatus:   "connected",
	}
	if err := h.endpoint.Ping(ctx); err != nil {
		h.log.Warn("SPARQL 端点不可达", zap.Error(err))
		status.SPARQLStatus = "unreachable"
	}
	c.JSON(http.StatusOK, status)
}
