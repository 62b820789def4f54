/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-20 17:42:18
 * @FilePath: \go-chatsync\models\enums.go
 * @Description: 枚举类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

// MessageStatus 消息状态
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"   // 待发送（本地乐观写入）
	MessageStatusSent      MessageStatus = "sent"      // 服务端已接受
	MessageStatusDelivered MessageStatus = "delivered" // 已送达对方
	MessageStatusRead      MessageStatus = "read"      // 已读
	MessageStatusFailed    MessageStatus = "failed"    // 发送失败（终态，需用户重新发送）
)

// String 实现Stringer接口
func (s MessageStatus) String() string {
	return string(s)
}

// IsValid 检查消息状态是否有效
func (s MessageStatus) IsValid() bool {
	switch s {
	case MessageStatusPending, MessageStatusSent, MessageStatusDelivered,
		MessageStatusRead, MessageStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal 检查是否为终态
// failed 和 read 之后状态不再变化
func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusFailed || s == MessageStatusRead
}

// Rank 返回状态的单调序号，用于判断状态只能前进不能回退
// failed 不参与排序（由 CanTransitionTo 单独处理）
func (s MessageStatus) Rank() int {
	switch s {
	case MessageStatusPending:
		return 0
	case MessageStatusSent:
		return 1
	case MessageStatusDelivered:
		return 2
	case MessageStatusRead:
		return 3
	default:
		return -1
	}
}

// CanTransitionTo 检查状态迁移是否合法
// 状态机：
//
//	pending -> sent | failed
//	sent -> delivered
//	delivered -> read
//
// 服务端推送具有权威性，允许跳跃前进（如 sent -> read），但不允许任何回退
func (s MessageStatus) CanTransitionTo(target MessageStatus) bool {
	if s == target {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if target == MessageStatusFailed {
		// 仅未确认的消息可以判定失败
		return s == MessageStatusPending || s == MessageStatusSent
	}
	return target.Rank() > s.Rank()
}

// SenderKind 消息发送方类型
type SenderKind string

const (
	SenderKindUser        SenderKind = "user"         // 本端用户
	SenderKindRemoteParty SenderKind = "remote_party" // 对端
)

// String 实现Stringer接口
func (k SenderKind) String() string {
	return string(k)
}

// IsValid 检查发送方类型是否有效
func (k SenderKind) IsValid() bool {
	return k == SenderKindUser || k == SenderKindRemoteParty
}

// ConnectionStatus 实时连接状态
type ConnectionStatus string

const (
	ConnectionStatusConnecting ConnectionStatus = "connecting" // 连接中（初始状态）
	ConnectionStatusOpen       ConnectionStatus = "open"       // 已连接，唯一允许发送帧的状态
	ConnectionStatusClosing    ConnectionStatus = "closing"    // 主动关闭中
	ConnectionStatusClosed     ConnectionStatus = "closed"     // 已关闭
	ConnectionStatusFailed     ConnectionStatus = "failed"     // 连接失败
)

// String 实现Stringer接口
func (s ConnectionStatus) String() string {
	return string(s)
}

// IsValid 检查连接状态是否有效
func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionStatusConnecting, ConnectionStatusOpen, ConnectionStatusClosing,
		ConnectionStatusClosed, ConnectionStatusFailed:
		return true
	default:
		return false
	}
}

// MediaType 媒体类型
type MediaType string

const (
	MediaTypeImage MediaType = "image" // 图片
	MediaTypeVideo MediaType = "video" // 视频
	MediaTypeAudio MediaType = "audio" // 音频
	MediaTypeFile  MediaType = "file"  // 文件
)

// String 实现Stringer接口
func (t MediaType) String() string {
	return string(t)
}

// IsValid 检查媒体类型是否有效
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeFile:
		return true
	default:
		return false
	}
}
