/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 12:10:33
 * @FilePath: \go-chatsync\exports_models.go
 * @Description: Models模块类型导出 - 保持向后兼容
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"github.com/kamalyes/go-chatsync/models"
)

// ==================== 基础类型 ====================
type (
	IDGenerator = models.IDGenerator
	Message     = models.Message
	Media       = models.Media
	Frame       = models.Frame
	Event       = models.Event
	Change      = models.Change
)

// ==================== 枚举类型 ====================
type (
	MessageStatus    = models.MessageStatus
	SenderKind       = models.SenderKind
	ConnectionStatus = models.ConnectionStatus
	MediaType        = models.MediaType
	FrameType        = models.FrameType
	EventType        = models.EventType
	ChangeKind       = models.ChangeKind
)

// ==================== 枚举常量 - MessageStatus ====================
const (
	MessageStatusPending   = models.MessageStatusPending
	MessageStatusSent      = models.MessageStatusSent
	MessageStatusDelivered = models.MessageStatusDelivered
	MessageStatusRead      = models.MessageStatusRead
	MessageStatusFailed    = models.MessageStatusFailed
)

// ==================== 枚举常量 - SenderKind ====================
const (
	SenderKindUser        = models.SenderKindUser
	SenderKindRemoteParty = models.SenderKindRemoteParty
)

// ==================== 枚举常量 - ConnectionStatus ====================
const (
	ConnectionStatusConnecting = models.ConnectionStatusConnecting
	ConnectionStatusOpen       = models.ConnectionStatusOpen
	ConnectionStatusClosing    = models.ConnectionStatusClosing
	ConnectionStatusClosed     = models.ConnectionStatusClosed
	ConnectionStatusFailed     = models.ConnectionStatusFailed
)

// ==================== 枚举常量 - MediaType ====================
const (
	MediaTypeImage = models.MediaTypeImage
	MediaTypeVideo = models.MediaTypeVideo
	MediaTypeAudio = models.MediaTypeAudio
	MediaTypeFile  = models.MediaTypeFile
)

// ==================== 枚举常量 - FrameType ====================
const (
	FrameTypeJoinConversation  = models.FrameTypeJoinConversation
	FrameTypeLeaveConversation = models.FrameTypeLeaveConversation
	FrameTypeChatMessage       = models.FrameTypeChatMessage
	FrameTypeTypingIndicator   = models.FrameTypeTypingIndicator
)

// ==================== 枚举常量 - EventType ====================
const (
	EventTypeChatMessage     = models.EventTypeChatMessage
	EventTypeDeliveryReceipt = models.EventTypeDeliveryReceipt
	EventTypeReadReceipt     = models.EventTypeReadReceipt
	EventTypeTypingIndicator = models.EventTypeTypingIndicator
	EventTypeError           = models.EventTypeError
)

// ==================== 枚举常量 - ChangeKind ====================
const (
	ChangeKindMessageUpserted  = models.ChangeKindMessageUpserted
	ChangeKindStatusChanged    = models.ChangeKindStatusChanged
	ChangeKindMessageDeleted   = models.ChangeKindMessageDeleted
	ChangeKindConversationRead = models.ChangeKindConversationRead
)
