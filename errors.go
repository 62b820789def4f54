/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 10:45:21
 * @FilePath: \go-chatsync\errors.go
 * @Description: 聊天同步错误定义 - 基于errorx.BaseError模式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// 错误类型定义，基于errorx.ErrorType
type ErrorType = errorx.ErrorType

// 聊天同步错误码常量定义
// 使用 82xxx 区间，避免与其他包冲突
const (
	// 基础错误类别 (82000-82099)
	ErrTypeNetwork ErrorType = 82001 // 网络错误，可重试
	ErrTypeAPI     ErrorType = 82002 // 服务端API错误，不可重试
	ErrTypeAuth    ErrorType = 82003 // 认证错误，凭据失效
	ErrTypeStore   ErrorType = 82004 // 本地存储错误

	// 实时通道错误 (82100-82199)
	ErrTypeTransportClosed     ErrorType = 82101 // 通道已主动关闭
	ErrTypeTransportNotOpen    ErrorType = 82102 // 通道未处于 OPEN 状态
	ErrTypeSendBufferFull      ErrorType = 82103 // 发送缓冲区已满
	ErrTypeReconnectExhausted  ErrorType = 82104 // 重连次数耗尽
	ErrTypeHandshakeFailed     ErrorType = 82105 // 握手失败
	ErrTypeInvalidEventPayload ErrorType = 82106 // 入站事件载荷不合法

	// 同步引擎错误 (82200-82299)
	ErrTypeStaleCache       ErrorType = 82201 // 本地缓存为空且远端不可达
	ErrTypeEngineClosed     ErrorType = 82202 // 引擎已关闭
	ErrTypeMessageNotFound  ErrorType = 82203 // 消息未找到
	ErrTypeInvalidArgument  ErrorType = 82204 // 参数不合法
	ErrTypeRefreshFailed    ErrorType = 82205 // 凭据刷新失败
	ErrTypeObserverDetached ErrorType = 82206 // 订阅已取消
)

// init 初始化所有错误类型注册
// 注意：在运行多个测试包时，可能会看到 "ErrorType XXX is already registered" 的警告信息
// 这是正常现象，errorx包内部会忽略重复注册
func init() {
	// 注册基础错误类别
	errorx.RegisterError(ErrTypeNetwork, "network error: %s")
	errorx.RegisterError(ErrTypeAPI, "api error (status %d): %s")
	errorx.RegisterError(ErrTypeAuth, "authentication failed")
	errorx.RegisterError(ErrTypeStore, "local store error: %s")

	// 注册实时通道错误
	errorx.RegisterError(ErrTypeTransportClosed, "transport closed")
	errorx.RegisterError(ErrTypeTransportNotOpen, "transport is not open")
	errorx.RegisterError(ErrTypeSendBufferFull, "send buffer is full")
	errorx.RegisterError(ErrTypeReconnectExhausted, "reconnect attempts exhausted after %d tries")
	errorx.RegisterError(ErrTypeHandshakeFailed, "websocket handshake failed: %s")
	errorx.RegisterError(ErrTypeInvalidEventPayload, "invalid event payload for type %s")

	// 注册同步引擎错误
	errorx.RegisterError(ErrTypeStaleCache, "no cached messages and remote is unreachable")
	errorx.RegisterError(ErrTypeEngineClosed, "sync engine is closed")
	errorx.RegisterError(ErrTypeMessageNotFound, "message not found: %s")
	errorx.RegisterError(ErrTypeInvalidArgument, "invalid argument: %s")
	errorx.RegisterError(ErrTypeRefreshFailed, "credential refresh failed")
	errorx.RegisterError(ErrTypeObserverDetached, "conversation subscription detached")
}

// ============================================================================
// 错误变量定义
// ============================================================================

// 实时通道错误变量
var (
	ErrTransportClosed  = errorx.NewError(ErrTypeTransportClosed)
	ErrTransportNotOpen = errorx.NewError(ErrTypeTransportNotOpen)
	ErrSendBufferFull   = errorx.NewError(ErrTypeSendBufferFull)
)

// 同步引擎错误变量
var (
	ErrStaleCache   = errorx.NewError(ErrTypeStaleCache)
	ErrEngineClosed = errorx.NewError(ErrTypeEngineClosed)
	ErrAuthFailed   = errorx.NewError(ErrTypeAuth)
)

// errType 提取 errorx 错误类型，非 errorx 错误返回 0
// errorx.BaseError 以 GetType() 暴露类型字段
func errType(err error) ErrorType {
	if err == nil {
		return 0
	}
	if errxErr, ok := err.(interface{ GetType() ErrorType }); ok {
		return errxErr.GetType()
	}
	return 0
}

// IsNetworkError 判断是否为网络错误
func IsNetworkError(err error) bool {
	return errType(err) == ErrTypeNetwork
}

// IsAPIError 判断是否为服务端API错误
func IsAPIError(err error) bool {
	return errType(err) == ErrTypeAPI
}

// IsAuthError 判断是否为认证错误
func IsAuthError(err error) bool {
	if err == ErrAuthFailed {
		return true
	}
	return errType(err) == ErrTypeAuth
}

// IsStoreError 判断是否为本地存储错误
func IsStoreError(err error) bool {
	return errType(err) == ErrTypeStore
}

// IsStaleCacheError 判断是否为缓存失效错误
func IsStaleCacheError(err error) bool {
	if err == ErrStaleCache {
		return true
	}
	return errType(err) == ErrTypeStaleCache
}

// IsRetryableError 判断错误是否可以重试
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	switch errType(err) {
	case ErrTypeNetwork, ErrTypeSendBufferFull, ErrTypeTransportNotOpen:
		return true
	default:
		return err == ErrSendBufferFull || err == ErrTransportNotOpen
	}
}
