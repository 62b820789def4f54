/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 11:18:33
 * @FilePath: \go-chatsync\reconnect.go
 * @Description: 重连退避策略
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
)

// ReconnectPolicy 指数退避重连策略
// 默认序列 1s, 2s, 4s, 8s, 16s，共 5 次；连接成功后 Reset 归零
type ReconnectPolicy struct {
	mu          sync.Mutex
	backoff     *backoff.Backoff
	maxAttempts int
}

// NewReconnectPolicy 按配置创建重连策略
// 退避因子与最大次数下限为1，防止配置错误导致延迟不增长或不重连
func NewReconnectPolicy(config *Config) *ReconnectPolicy {
	return &ReconnectPolicy{
		backoff: &backoff.Backoff{
			Min:    config.ReconnectMinDelay,
			Max:    config.ReconnectMaxDelay,
			Factor: mathx.IF(config.ReconnectFactor < 1, 1, config.ReconnectFactor),
			Jitter: false,
		},
		maxAttempts: mathx.IF(config.MaxReconnectAttempts < 1, 1, config.MaxReconnectAttempts),
	}
}

// NextDelay 返回下一次重连前的等待时长
// 次数耗尽时返回 (0, false)
func (p *ReconnectPolicy) NextDelay() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(p.backoff.Attempt()) >= p.maxAttempts {
		return 0, false
	}
	return p.backoff.Duration(), true
}

// Attempt 已消耗的重连次数
func (p *ReconnectPolicy) Attempt() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.backoff.Attempt())
}

// Exhausted 重连次数是否已耗尽
func (p *ReconnectPolicy) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.backoff.Attempt()) >= p.maxAttempts
}

// Reset 连接成功后归零退避计数
func (p *ReconnectPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backoff.Reset()
}
