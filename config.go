/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 11:02:36
 * @FilePath: \go-chatsync\config.go
 * @Description: Config 结构体
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import "time"

// Config 聊天同步引擎与实时通道的配置
type Config struct {
	SenderID             string        // 当前用户ID
	RemoteBaseURL        string        // 远端 HTTP API 基础地址
	TransportURL         string        // 实时通道 WebSocket 地址
	CacheValidity        time.Duration // 本地缓存有效期
	PageSize             int           // 默认分页大小
	SnapshotLimit        int           // 订阅快照最大条数
	ObserverBufferSize   int           // 订阅事件缓冲区大小
	SendBufferSize       int           // 出站帧缓冲池大小
	WriteWait            time.Duration // 写超时
	MaxMessageSize       int64         // 最大消息长度
	HandshakeTimeout     time.Duration // 握手超时
	ReconnectMinDelay    time.Duration // 首次重连延迟
	ReconnectMaxDelay    time.Duration // 最大重连延迟
	ReconnectFactor      float64       // 重连退避因子
	MaxReconnectAttempts int           // 最大重连次数
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		CacheValidity:        5 * time.Minute,
		PageSize:             20,
		SnapshotLimit:        200,
		ObserverBufferSize:   16,
		SendBufferSize:       256,
		WriteWait:            10 * time.Second,
		MaxMessageSize:       64 * 1024,
		HandshakeTimeout:     10 * time.Second,
		ReconnectMinDelay:    1 * time.Second,
		ReconnectMaxDelay:    16 * time.Second,
		ReconnectFactor:      2,
		MaxReconnectAttempts: 5,
	}
}

// WithSenderID 设置当前用户ID并返回当前配置对象
func (c *Config) WithSenderID(id string) *Config {
	c.SenderID = id
	return c
}

// WithRemoteBaseURL 设置远端API基础地址并返回当前配置对象
func (c *Config) WithRemoteBaseURL(url string) *Config {
	c.RemoteBaseURL = url
	return c
}

// WithTransportURL 设置实时通道地址并返回当前配置对象
func (c *Config) WithTransportURL(url string) *Config {
	c.TransportURL = url
	return c
}

// WithCacheValidity 设置缓存有效期并返回当前配置对象
func (c *Config) WithCacheValidity(d time.Duration) *Config {
	c.CacheValidity = d
	return c
}

// WithPageSize 设置分页大小并返回当前配置对象
func (c *Config) WithPageSize(size int) *Config {
	c.PageSize = size
	return c
}

// WithSnapshotLimit 设置订阅快照最大条数并返回当前配置对象
func (c *Config) WithSnapshotLimit(limit int) *Config {
	c.SnapshotLimit = limit
	return c
}

// WithObserverBufferSize 设置订阅事件缓冲区大小并返回当前配置对象
func (c *Config) WithObserverBufferSize(size int) *Config {
	c.ObserverBufferSize = size
	return c
}

// WithSendBufferSize 设置出站帧缓冲池大小并返回当前配置对象
func (c *Config) WithSendBufferSize(size int) *Config {
	c.SendBufferSize = size
	return c
}

// WithWriteWait 设置写超时并返回当前配置对象
func (c *Config) WithWriteWait(d time.Duration) *Config {
	c.WriteWait = d
	return c
}

// WithMaxMessageSize 设置最大消息长度并返回当前配置对象
func (c *Config) WithMaxMessageSize(size int64) *Config {
	c.MaxMessageSize = size
	return c
}

// WithHandshakeTimeout 设置握手超时并返回当前配置对象
func (c *Config) WithHandshakeTimeout(d time.Duration) *Config {
	c.HandshakeTimeout = d
	return c
}

// WithReconnectMinDelay 设置首次重连延迟并返回当前配置对象
func (c *Config) WithReconnectMinDelay(d time.Duration) *Config {
	c.ReconnectMinDelay = d
	return c
}

// WithReconnectMaxDelay 设置最大重连延迟并返回当前配置对象
func (c *Config) WithReconnectMaxDelay(d time.Duration) *Config {
	c.ReconnectMaxDelay = d
	return c
}

// WithReconnectFactor 设置重连退避因子并返回当前配置对象
func (c *Config) WithReconnectFactor(factor float64) *Config {
	c.ReconnectFactor = factor
	return c
}

// WithMaxReconnectAttempts 设置最大重连次数并返回当前配置对象
func (c *Config) WithMaxReconnectAttempts(n int) *Config {
	c.MaxReconnectAttempts = n
	return c
}
