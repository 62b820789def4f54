/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-21 10:02:31
 * @FilePath: \go-chatsync\models\event.go
 * @Description: 实时通道帧与事件定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"encoding/json"
)

// FrameType 出站帧类型（客户端 -> 服务端）
type FrameType string

const (
	FrameTypeJoinConversation  FrameType = "join_conversation"  // 加入会话
	FrameTypeLeaveConversation FrameType = "leave_conversation" // 离开会话
	FrameTypeChatMessage       FrameType = "chat_message"       // 聊天消息通知
	FrameTypeTypingIndicator   FrameType = "typing_indicator"   // 输入状态
)

// String 实现Stringer接口
func (t FrameType) String() string {
	return string(t)
}

// EventType 入站事件类型（服务端 -> 客户端）
type EventType string

const (
	EventTypeChatMessage     EventType = "chat_message"     // 新消息
	EventTypeDeliveryReceipt EventType = "delivery_receipt" // 送达回执
	EventTypeReadReceipt     EventType = "read_receipt"     // 已读回执
	EventTypeTypingIndicator EventType = "typing_indicator" // 输入状态
	EventTypeError           EventType = "error"            // 服务端错误
)

// String 实现Stringer接口
func (t EventType) String() string {
	return string(t)
}

// Frame 出站帧信封
type Frame struct {
	Type    FrameType   `json:"type"`    // 帧类型
	Payload interface{} `json:"payload"` // 载荷
}

// Event 入站事件信封
// Payload 延迟解码，由事件类型决定具体结构
type Event struct {
	Type    EventType       `json:"type"`    // 事件类型
	Payload json.RawMessage `json:"payload"` // 载荷
}

// JoinPayload 加入/离开会话载荷
type JoinPayload struct {
	ConversationID string `json:"conversation_id"` // 会话ID
}

// TypingPayload 输入状态载荷
type TypingPayload struct {
	ConversationID string `json:"conversation_id"` // 会话ID
	UserID         string `json:"user_id"`         // 用户ID
	IsTyping       bool   `json:"is_typing"`       // 是否正在输入
}

// ChatMessagePayload 聊天消息载荷
type ChatMessagePayload struct {
	MessageID      string `json:"message_id"`      // 消息ID（服务端ID）
	ConversationID string `json:"conversation_id"` // 会话ID
	Content        string `json:"content"`         // 消息内容
	SenderID       string `json:"sender_id"`       // 发送者ID
	Timestamp      int64  `json:"timestamp"`       // 毫秒时间戳
	Media          *Media `json:"media,omitempty"` // 媒体信息
}

// DeliveryReceiptPayload 送达回执载荷
type DeliveryReceiptPayload struct {
	MessageID      string `json:"message_id"`      // 消息ID
	ConversationID string `json:"conversation_id"` // 会话ID
	Timestamp      int64  `json:"timestamp"`       // 送达时间（毫秒）
}

// ReadReceiptPayload 已读回执载荷
// MessageID 为空表示整个会话已读
type ReadReceiptPayload struct {
	MessageID      string `json:"message_id,omitempty"` // 消息ID（可选）
	ConversationID string `json:"conversation_id"`      // 会话ID
	Timestamp      int64  `json:"timestamp"`            // 已读时间（毫秒）
}

// ErrorPayload 服务端错误载荷
type ErrorPayload struct {
	Code    int    `json:"code"`    // 错误码
	Message string `json:"message"` // 错误描述
}

// NewJoinFrame 创建加入会话帧
func NewJoinFrame(conversationID string) *Frame {
	return &Frame{
		Type:    FrameTypeJoinConversation,
		Payload: &JoinPayload{ConversationID: conversationID},
	}
}

// NewLeaveFrame 创建离开会话帧
func NewLeaveFrame(conversationID string) *Frame {
	return &Frame{
		Type:    FrameTypeLeaveConversation,
		Payload: &JoinPayload{ConversationID: conversationID},
	}
}

// NewChatMessageFrame 创建聊天消息帧
func NewChatMessageFrame(msg *Message) *Frame {
	return &Frame{
		Type: FrameTypeChatMessage,
		Payload: &ChatMessagePayload{
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
			Content:        msg.Content,
			SenderID:       msg.SenderID,
			Timestamp:      msg.Timestamp,
			Media:          msg.Media,
		},
	}
}

// NewTypingFrame 创建输入状态帧
func NewTypingFrame(conversationID, userID string, isTyping bool) *Frame {
	return &Frame{
		Type: FrameTypeTypingIndicator,
		Payload: &TypingPayload{
			ConversationID: conversationID,
			UserID:         userID,
			IsTyping:       isTyping,
		},
	}
}
