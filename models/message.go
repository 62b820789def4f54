/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-21 09:15:44
 * @FilePath: \go-chatsync\models\message.go
 * @Description: 消息数据模型
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"time"

	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// Media 消息携带的媒体信息，为空表示纯文本消息
type Media struct {
	Type         MediaType `json:"type"`                    // 媒体类型
	URL          string    `json:"url"`                     // 媒体地址
	ThumbnailURL string    `json:"thumbnail_url,omitempty"` // 缩略图地址
	Duration     int64     `json:"duration,omitempty"`      // 时长（毫秒，音视频有效）
}

// Message 聊天消息
// ID 在创建时由客户端生成，服务端确认后被服务端 ID 取代；
// 本地存储通过 ReplaceID 保证两个 ID 指向同一条逻辑消息
type Message struct {
	ID             string        `json:"id"`                 // 消息ID
	ConversationID string        `json:"conversation_id"`    // 会话ID，排序与分页均以此为作用域
	Content        string        `json:"content"`            // 消息内容
	SenderID       string        `json:"sender_id"`          // 发送者ID
	SenderKind     SenderKind    `json:"sender_kind"`        // 发送方类型
	Timestamp      int64         `json:"timestamp"`          // 逻辑排序键（毫秒时间戳，同值按ID排序）
	Status         MessageStatus `json:"status"`             // 消息状态
	Media          *Media        `json:"media,omitempty"`    // 媒体信息（可选）
	CachedAt       int64         `json:"-"`                  // 本地缓存时间（毫秒），仅用于缓存新鲜度判断，不上行
}

// NewMessage 创建消息，默认状态 pending
func NewMessage() *Message {
	return &Message{
		SenderKind: SenderKindUser,
		Status:     MessageStatusPending,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// SetID 设置消息ID
func (m *Message) SetID(id string) *Message {
	m.ID = id
	return m
}

// SetConversationID 设置会话ID
func (m *Message) SetConversationID(conversationID string) *Message {
	m.ConversationID = conversationID
	return m
}

// SetContent 设置消息内容
func (m *Message) SetContent(content string) *Message {
	m.Content = content
	return m
}

// SetSenderID 设置发送者ID
func (m *Message) SetSenderID(senderID string) *Message {
	m.SenderID = senderID
	return m
}

// SetSenderKind 设置发送方类型
func (m *Message) SetSenderKind(kind SenderKind) *Message {
	m.SenderKind = kind
	return m
}

// SetTimestamp 设置排序时间戳
func (m *Message) SetTimestamp(ts int64) *Message {
	m.Timestamp = ts
	return m
}

// SetStatus 设置消息状态
func (m *Message) SetStatus(status MessageStatus) *Message {
	m.Status = status
	return m
}

// SetMedia 设置媒体信息
func (m *Message) SetMedia(media *Media) *Message {
	m.Media = media
	return m
}

// SetCachedAt 设置本地缓存时间
func (m *Message) SetCachedAt(ts int64) *Message {
	m.CachedAt = ts
	return m
}

// Before 判断排序先后，按 (timestamp, id) 升序
func (m *Message) Before(other *Message) bool {
	if m.Timestamp != other.Timestamp {
		return m.Timestamp < other.Timestamp
	}
	return m.ID < other.ID
}

// Clone 创建消息的深拷贝，避免并发修改问题
func (m *Message) Clone() *Message {
	var msg Message
	syncx.DeepCopy(&msg, m)
	return &msg
}
