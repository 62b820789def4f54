/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 11:10:07
 * @FilePath: \go-chatsync\logger.go
 * @Description: go-chatsync 日志接口，直接复用 go-logger
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"github.com/kamalyes/go-logger"
)

// ChatLogger 直接使用 go-logger.ILogger
type ChatLogger = logger.ILogger

// NewChatLogger 创建新的日志器，基于 go-logger
func NewChatLogger(config *logger.LogConfig) ChatLogger {
	return logger.NewLogger(config)
}

// NewDefaultChatLogger 创建默认配置的日志器
func NewDefaultChatLogger() ChatLogger {
	config := logger.DefaultConfig().
		WithLevel(logger.INFO).
		WithPrefix("[ChatSync] ").
		WithShowCaller(false).
		WithColorful(true).
		WithTimeFormat("2006-01-02 15:04:05")

	return logger.NewLogger(config)
}

// NewNoOpLogger 创建空日志实例
func NewNoOpLogger() ChatLogger {
	return logger.NewEmptyLogger()
}

// 全局日志器
var (
	// DefaultLogger 默认日志器实例
	DefaultLogger ChatLogger = NewDefaultChatLogger()

	// NoOpLoggerInstance 空日志器实例
	NoOpLoggerInstance ChatLogger = NewNoOpLogger()
)

// SetDefaultLogger 设置默认日志器
func SetDefaultLogger(l ChatLogger) {
	DefaultLogger = l
}
