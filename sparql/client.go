package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"metro-routing/config"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ResultsJSON SPARQL 1.1 查询结果的 JSON 格式
const ResultsJSON = "application/sparql-results+json"

// ErrUnavailable 无法从三元组存储拿到数据 (连接失败/超时/服务端错误)
var ErrUnavailable = errors.New("sparql endpoint unavailable")

// StatusError 端点返回了 4xx/5xx
type StatusError struct {
	URL, Status string
	StatusCode  int
	Body        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.URL, e.Status)
}

// Term 结果中的一个 RDF 项
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding 一行结果 (变量名 -> RDF 项)
type Binding map[string]Term

// Value 返回变量的值, 未绑定时返回空串
func (b Binding) Value(name string) string {
	return b[name].Value
}

// Has 变量是否被绑定
func (b Binding) Has(name string) bool {
	_, ok := b[name]
	return ok
}

// Results SELECT 查询结果
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Response 代理接口使用的原始响应
type Response struct {
	ContentType string
	Body        []byte
}

// Client 三元组存储的 HTTP 客户端
// 超时与重试只在这一层处理, 建图和选路不关心
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	retryLimit int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient 根据配置创建客户端
func NewClient(cfg config.SPARQLConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{},
		timeout:    time.Duration(cfg.TimeoutMS) * time.Millisecond,
		retryLimit: cfg.RetryLimit,
		retryDelay: time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		logger:     logger,
	}
}

// Endpoint 返回查询端点地址
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query 执行查询并返回原始响应, 失败时按配置重试
// 4xx (查询本身有误) 不重试
func (c *Client) Query(ctx context.Context, query, format string) (*Response, error) {
	if format == "" {
		format = ResultsJSON
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryLimit; attempt++ {
		if attempt > 0 {
			c.logger.Warn("SPARQL 查询失败, 准备重试",
				zap.Int("attempt", attempt),
				zap.Int("retry_limit", c.retryLimit),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		resp, err := c.do(ctx, query, format)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && se.StatusCode < 500 {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

// do 发送一次查询请求
func (c *Client) do(ctx context.Context, query, format string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}
	params := u.Query()
	params.Set("query", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", format)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			URL:        u.Redacted(),
			Status:     resp.Status,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return &Response{ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

// Select 执行 SELECT 查询并解析 JSON 结果
func (c *Client) Select(ctx context.Context, query string) (*Results, error) {
	resp, err := c.Query(ctx, query, ResultsJSON)
	if err != nil {
		return nil, err
	}

	var res Results
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	return &res, nil
}

// PingURL Fuseki 的健康检查地址: 把结尾的 /sparql 换成 /$/ping
func (c *Client) PingURL() string {
	return strings.Replace(c.endpoint, "/sparql", "/$/ping", 1)
}

// Ping 检查端点是否可达
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PingURL(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: req.URL.Redacted(), Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return nil
}
