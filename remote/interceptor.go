/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-22 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 15:03:18
 * @FilePath: \go-chatsync\remote\interceptor.go
 * @Description: 凭据拦截器 - Bearer 注入与 401 单次刷新重试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package remote

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/kamalyes/go-logger"
)

// CredentialProvider 凭据提供者
// AccessToken 返回当前令牌，ok=false 表示尚未登录；
// Refresh 同步刷新令牌并返回新值
type CredentialProvider interface {
	AccessToken(ctx context.Context) (token string, ok bool)
	Refresh(ctx context.Context) (string, error)
}

// AuthTransport 凭据拦截器，实现 http.RoundTripper
// 规则：
//  1. 认证端点（路径含 /auth/）不附加凭据，直接透传
//  2. 其余请求附加 Authorization: Bearer <token>
//  3. 收到 401 时刷新一次凭据并用新令牌重放请求，仅一次；
//     刷新失败或重放仍为 401 则按原样返回，绝不循环
type AuthTransport struct {
	provider CredentialProvider
	base     http.RoundTripper
	logger   logger.ILogger

	// refreshMu 串行化并发刷新，避免多请求同时触发
	refreshMu sync.Mutex
}

// NewAuthTransport 创建凭据拦截器
// base 为 nil 时使用 http.DefaultTransport
func NewAuthTransport(provider CredentialProvider, base http.RoundTripper, log logger.ILogger) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		provider: provider,
		base:     base,
		logger:   log,
	}
}

// isAuthEndpoint 判断是否为认证端点
func isAuthEndpoint(req *http.Request) bool {
	return strings.Contains(req.URL.Path, "/auth/")
}

// RoundTrip 实现 http.RoundTripper
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAuthEndpoint(req) {
		return t.base.RoundTrip(req)
	}

	token, ok := t.provider.AccessToken(req.Context())
	outReq := cloneRequest(req)
	if ok {
		outReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(outReq)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	t.refreshMu.Lock()
	newToken, refreshErr := t.provider.Refresh(req.Context())
	t.refreshMu.Unlock()
	if refreshErr != nil {
		if t.logger != nil {
			t.logger.ErrorKV("凭据刷新失败", "path", req.URL.Path, "error", refreshErr)
		}
		// 刷新失败时返回原始 401 响应
		return resp, nil
	}

	// 重放请求前释放原响应体
	resp.Body.Close()

	retryReq := cloneRequest(req)
	retryReq.Header.Set("Authorization", "Bearer "+newToken)
	return t.base.RoundTrip(retryReq)
}

// cloneRequest 克隆请求，带体请求依赖 GetBody 重建可读体
func cloneRequest(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			out.Body = body
		}
	}
	return out
}
