/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-22 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 15:47:28
 * @FilePath: \go-chatsync\remote\interceptor_test.go
 * @Description: 凭据拦截器测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kamalyes/go-logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider 测试用凭据提供者
type fakeProvider struct {
	token        atomic.Value
	hasToken     bool
	refreshErr   error
	refreshCalls int32
}

func newFakeProvider(token string) *fakeProvider {
	p := &fakeProvider{hasToken: token != ""}
	p.token.Store(token)
	return p
}

func (p *fakeProvider) AccessToken(ctx context.Context) (string, bool) {
	return p.token.Load().(string), p.hasToken
}

func (p *fakeProvider) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&p.refreshCalls, 1)
	if p.refreshErr != nil {
		return "", p.refreshErr
	}
	newToken := "refreshed-token"
	p.token.Store(newToken)
	return newToken, nil
}

// newAuthClient 创建挂载拦截器的HTTP客户端
func newAuthClient(provider CredentialProvider) *http.Client {
	return &http.Client{
		Transport: NewAuthTransport(provider, nil, logger.NewEmptyLogger()),
	}
}

// TestAuthTransport_AttachBearer 测试凭据附加
func TestAuthTransport_AttachBearer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newAuthClient(newFakeProvider("token-1"))
	resp, err := client.Get(server.URL + "/conversations/c1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer token-1", gotAuth)
}

// TestAuthTransport_AuthEndpointExempt 测试认证端点不附加凭据
func TestAuthTransport_AuthEndpointExempt(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newAuthClient(newFakeProvider("token-1"))
	resp, err := client.Get(server.URL + "/auth/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, gotAuth, "认证端点不应携带Authorization头")
}

// TestAuthTransport_RefreshRetryOnce 测试401刷新并重放一次
func TestAuthTransport_RefreshRetryOnce(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n == 1 {
			assert.Equal(t, "Bearer stale-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer refreshed-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := newFakeProvider("stale-token")
	client := newAuthClient(provider)
	resp, err := client.Get(server.URL + "/conversations/c1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.refreshCalls))
}

// TestAuthTransport_SecondUnauthorizedPropagates 测试重放仍401时按原样返回
func TestAuthTransport_SecondUnauthorizedPropagates(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := newFakeProvider("stale-token")
	client := newAuthClient(provider)
	resp, err := client.Get(server.URL + "/conversations/c1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests), "仅重放一次，绝不循环")
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.refreshCalls))
}

// TestAuthTransport_RefreshFailureReturnsOriginal 测试刷新失败返回原始401
func TestAuthTransport_RefreshFailureReturnsOriginal(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := newFakeProvider("stale-token")
	provider.refreshErr = assert.AnError
	client := newAuthClient(provider)
	resp, err := client.Get(server.URL + "/conversations/c1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "刷新失败不重放请求")
}
