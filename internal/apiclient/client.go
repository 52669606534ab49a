package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client REST 后端的薄封装
//
// 每次调用都是独立的：不缓存响应、不合并相同请求、失败不重试，
// 由调用方决定如何处理错误。
type Client struct {
	http     *http.Client
	resolver *BaseURLResolver
	token    string
	logger   *zap.Logger
}

// New 创建 Client
func New(resolver *BaseURLResolver, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		resolver: resolver,
		logger:   logger,
	}
}

// WithToken 返回携带 Bearer Token 的副本
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL 当前请求对应的后端地址
func (c *Client) BaseURL(ctx context.Context) string {
	return c.resolver.Resolve(BrowserHost(ctx))
}

// ── 错误类型 ──

// APIError 后端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// NetworkError 后端不可达
type NetworkError struct {
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Impossible de contacter le serveur (%s). Vérifiez que le backend est démarré.", e.BaseURL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusOf 返回后端错误的 HTTP 状态码，非 APIError 时为 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized 是否为 401（凭证错误或 Token 失效）
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNetwork 是否为网络错误
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// ── 请求执行 ──

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, string, error) {
	base := c.BaseURL(ctx)
	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, base, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, base, nil
}

// send 发送请求；非 2xx 时读取并关闭响应体，返回 APIError
func (c *Client) send(req *http.Request, base string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("后端不可达",
			zap.String("method", req.Method),
			zap.String("base_url", base),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return nil, &NetworkError{BaseURL: base, Err: err}
	}

	c.logger.Debug("后端调用完成",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	return resp, nil
}

// do 执行请求并将 JSON 响应解码到 out（out 为 nil 时丢弃响应体）
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, base, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.send(req, base)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{BaseURL: base, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("解析后端响应失败: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) sendForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// errorMessage 从错误响应体中提取后端消息
// 支持 {"detail": "..."}、{"detail": [{"msg": "..."}]}、{"message": "..."}
func errorMessage(status int, raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if len(body.Detail) > 0 {
			var s string
			if json.Unmarshal(body.Detail, &s) == nil && s != "" {
				return s
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(body.Detail, &items) == nil {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if it.Msg != "" {
						msgs = append(msgs, it.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("HTTP error %d", status)
}
