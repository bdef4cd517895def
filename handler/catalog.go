package handler

import (
	"context"
	"errors"
	"metro-routing/model"
	"metro-routing/sparql"
	"metro-routing/utils"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler 站点/线路目录接口, 结果短时间缓存
type CatalogHandler struct {
	catalog Catalog
	cache   gcache.Cache // 为 nil 时不缓存
	log     *zap.Logger
}

// NewCatalogHandler 创建目录接口; ttl 为 0 时不缓存
func NewCatalogHandler(catalog Catalog, size int, ttl time.Duration, log *zap.Logger) *CatalogHandler {
	h := &CatalogHandler{catalog: catalog, log: log}
	if ttl > 0 && size > 0 {
		h.cache = gcache.New(size).LRU().Expiration(ttl).Build()
	}
	return h
}

// cached 先查缓存, 未命中时加载并写入
func cached[T any](h *CatalogHandler, key string, load func() (T, error)) (T, error) {
	if h.cache != nil {
		if v, err := h.cache.Get(key); err == nil {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		} else if !errors.Is(err, gcache.KeyNotFoundError) {
			h.log.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if h.cache != nil {
		if err := h.cache.Set(key, v); err != nil {
			h.log.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

func (h *CatalogHandler) stations(ctx context.Context) ([]model.Station, error) {
	return cached(h, "stations", func() ([]model.Station, error) {
		return h.catalog.Stations(ctx)
	})
}

// GetStations 获取所有站点
func (h *CatalogHandler) GetStations(c *gin.Context) {
	stations, err := h.stations(c.Request.Context())
	if err != nil {
		abortUpstream(c, "failed to load stations", err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

// SearchStations 按名称搜索站点 (子串匹配, 区分大小写)
func (h *CatalogHandler) SearchStations(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search term"})
		return
	}

	stations, err := h.stations(c.Request.Context())
	if err != nil {
		abortUpstream(c, "failed to load stations", err)
		return
	}

	results := make([]model.Station, 0)
	for _, s := range stations {
		if strings.Contains(s.Name, query) {
			results = append(results, s)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// NearestStation 找到离给定坐标最近的站点
func (h *CatalogHandler) NearestStation(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid lat and lng are required"})
		return
	}

	stations, err := h.stations(c.Request.Context())
	if err != nil {
		abortUpstream(c, "failed to load stations", err)
		return
	}

	target := model.Point{Lat: lat, Lng: lng}
	var nearest *model.Station
	minDist := -1.0
	for i := range stations {
		s := &stations[i]
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		d := utils.HaversineDistance(target, model.Point{Lat: *s.Latitude, Lng: *s.Longitude})
		if minDist < 0 || d < minDist {
			minDist = d
			nearest = s
		}
	}

	if nearest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no station with coordinates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"station":  nearest,
		"distance": minDist,
	})
}

// GetStation 根据 IRI 获取站点详情
func (h *CatalogHandler) GetStation(c *gin.Context) {
	iri := strings.TrimPrefix(c.Param("id"), "/")
	if iri == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "station id is required"})
		return
	}

	station, err := cached(h, "station:"+iri, func() (*model.StationDetails, error) {
		return h.catalog.Station(c.Request.Context(), iri)
	})
	if err != nil {
		abortUpstream(c, "station", err)
		return
	}
	c.JSON(http.StatusOK, station)
}

// GetLines 获取所有线路
func (h *CatalogHandler) GetLines(c *gin.Context) {
	lines, err := cached(h, "lines", func() ([]model.Line, error) {
		return h.catalog.Lines(c.Request.Context())
	})
	if err != nil {
		abortUpstream(c, "failed to load lines", err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

// GetLine 获取单条线路及其站点
func (h *CatalogHandler) GetLine(c *gin.Context) {
	code := c.Param("code")
	line, err := cached(h, "line:"+code, func() (*model.LineDetails, error) {
		return h.catalog.Line(c.Request.Context(), code)
	})
	if err != nil {
		abortUpstream(c, "line", err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// GetLineGeometries 获取所有线路走向
func (h *CatalogHandler) GetLineGeometries(c *gin.Context) {
	geometries, err := cached(h, "line-geometries", func() ([]model.LineGeometry, error) {
		return h.catalog.LineGeometries(c.Request.Context())
	})
	if err != nil {
		abortUpstream(c, "failed to load line geometries", err)
		return
	}
	c.JSON(http.StatusOK, geometries)
}

// GetExamples 示例查询
func (h *CatalogHandler) GetExamples(c *gin.Context) {
	c.JSON(http.StatusOK, sparql.Examples())
}
