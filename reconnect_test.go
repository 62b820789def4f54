/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 16:30:44
 * @FilePath: \go-chatsync\reconnect_test.go
 * @Description: 重连退避策略测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReconnectPolicy_DelaySequence 测试退避延迟序列
func TestReconnectPolicy_DelaySequence(t *testing.T) {
	policy := NewReconnectPolicy(NewDefaultConfig())

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
	for i, want := range expected {
		delay, ok := policy.NextDelay()
		require.True(t, ok, "第%d次应允许重连", i+1)
		assert.Equal(t, want, delay)
	}

	// 第6次耗尽
	_, ok := policy.NextDelay()
	assert.False(t, ok)
	assert.True(t, policy.Exhausted())
	assert.Equal(t, 5, policy.Attempt())
}

// TestReconnectPolicy_Reset 测试连接成功后归零
func TestReconnectPolicy_Reset(t *testing.T) {
	policy := NewReconnectPolicy(NewDefaultConfig())

	for i := 0; i < 3; i++ {
		_, ok := policy.NextDelay()
		require.True(t, ok)
	}
	assert.Equal(t, 3, policy.Attempt())

	policy.Reset()
	assert.Equal(t, 0, policy.Attempt())
	assert.False(t, policy.Exhausted())

	delay, ok := policy.NextDelay()
	require.True(t, ok)
	assert.Equal(t, 1*time.Second, delay, "归零后从首个延迟重新开始")
}

// TestReconnectPolicy_MaxDelayCap 测试最大延迟封顶
func TestReconnectPolicy_MaxDelayCap(t *testing.T) {
	config := NewDefaultConfig().WithMaxReconnectAttempts(10)
	policy := NewReconnectPolicy(config)

	var last time.Duration
	for i := 0; i < 10; i++ {
		delay, ok := policy.NextDelay()
		require.True(t, ok)
		last = delay
	}
	assert.Equal(t, 16*time.Second, last, "延迟不超过配置上限")
}
