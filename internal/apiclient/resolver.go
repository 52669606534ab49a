package apiclient

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
)

// BaseURLResolver 根据浏览器访问的主机名推导后端地址
//
// 解析顺序：
//  1. backend.base_url 显式指定时直接使用
//  2. localhost / 127.0.0.1 / 空主机名 → 本地开发地址
//  3. 主机名匹配 host_pattern → 以 host_replacement 替换得到兄弟主机
//  4. 其余 → 远程回退地址
type BaseURLResolver struct {
	explicit    string
	local       string
	remote      string
	scheme      string
	pattern     *regexp.Regexp
	replacement string
}

// NewBaseURLResolver 创建解析器
func NewBaseURLResolver(cfg *config.BackendConfig) (*BaseURLResolver, error) {
	r := &BaseURLResolver{
		explicit:    trimSlash(cfg.BaseURL),
		local:       trimSlash(cfg.LocalFallback),
		remote:      trimSlash(cfg.RemoteFallback),
		scheme:      cfg.Scheme,
		replacement: cfg.HostReplacement,
	}
	if r.scheme == "" {
		r.scheme = "https"
	}
	if cfg.HostPattern != "" {
		re, err := regexp.Compile(cfg.HostPattern)
		if err != nil {
			return nil, fmt.Errorf("backend.host_pattern 无效: %w", err)
		}
		r.pattern = re
	}
	return r, nil
}

// Resolve 由浏览器主机（可含端口）得到后端基础地址
func (r *BaseURLResolver) Resolve(browserHost string) string {
	if r.explicit != "" {
		return r.explicit
	}

	hostname := browserHost
	if h, _, err := net.SplitHostPort(browserHost); err == nil {
		hostname = h
	}
	hostname = strings.Trim(hostname, "[]")

	if isLocalHost(hostname) {
		if r.local != "" {
			return r.local
		}
		return r.remote
	}

	if r.pattern != nil && r.pattern.MatchString(hostname) {
		return r.scheme + "://" + r.pattern.ReplaceAllString(hostname, r.replacement)
	}

	if r.remote != "" {
		return r.remote
	}
	return r.local
}

func isLocalHost(hostname string) bool {
	switch hostname {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func trimSlash(s string) string {
	return strings.TrimRight(s, "/")
}

// ── 浏览器主机在 context 中传递 ──

type browserHostKey struct{}

// WithBrowserHost 记录当前请求的浏览器主机
func WithBrowserHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, browserHostKey{}, host)
}

// BrowserHost 读取浏览器主机，未设置时为空
func BrowserHost(ctx context.Context) string {
	h, _ := ctx.Value(browserHostKey{}).(string)
	return h
}

type requestIDKey struct{}

// WithRequestID 记录请求追踪 ID，后端调用时透传为 X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 读取请求追踪 ID，未设置时为空
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
