/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 14:31:40
 * @FilePath: \go-chatsync\models\message_test.go
 * @Description: 消息模型测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMessage 测试消息创建默认值
func TestNewMessage(t *testing.T) {
	msg := NewMessage()

	assert.Equal(t, MessageStatusPending, msg.Status, "新消息应为pending状态")
	assert.Equal(t, SenderKindUser, msg.SenderKind)
	assert.NotZero(t, msg.Timestamp)
	assert.Nil(t, msg.Media)
}

// TestMessage_Builder 测试链式设置
func TestMessage_Builder(t *testing.T) {
	media := &Media{Type: MediaTypeImage, URL: "https://cdn.example.com/a.png"}
	msg := NewMessage().
		SetID("msg-1").
		SetConversationID("conv-1").
		SetContent("hello").
		SetSenderID("user-1").
		SetSenderKind(SenderKindRemoteParty).
		SetTimestamp(1000).
		SetStatus(MessageStatusDelivered).
		SetMedia(media).
		SetCachedAt(2000)

	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "conv-1", msg.ConversationID)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "user-1", msg.SenderID)
	assert.Equal(t, SenderKindRemoteParty, msg.SenderKind)
	assert.Equal(t, int64(1000), msg.Timestamp)
	assert.Equal(t, MessageStatusDelivered, msg.Status)
	assert.Equal(t, media, msg.Media)
	assert.Equal(t, int64(2000), msg.CachedAt)
}

// TestMessage_Before 测试排序规则 (timestamp, id)
func TestMessage_Before(t *testing.T) {
	t.Run("时间戳不同按时间戳排序", func(t *testing.T) {
		a := NewMessage().SetID("b").SetTimestamp(100)
		b := NewMessage().SetID("a").SetTimestamp(200)
		assert.True(t, a.Before(b))
		assert.False(t, b.Before(a))
	})

	t.Run("时间戳相同按ID排序", func(t *testing.T) {
		a := NewMessage().SetID("msg-a").SetTimestamp(100)
		b := NewMessage().SetID("msg-b").SetTimestamp(100)
		assert.True(t, a.Before(b))
		assert.False(t, b.Before(a))
	})
}

// TestMessage_Clone 测试深拷贝
func TestMessage_Clone(t *testing.T) {
	original := NewMessage().
		SetID("msg-1").
		SetConversationID("conv-1").
		SetMedia(&Media{Type: MediaTypeVideo, URL: "https://cdn.example.com/v.mp4", Duration: 3000})

	cloned := original.Clone()
	require.NotNil(t, cloned)
	assert.Equal(t, original.ID, cloned.ID)
	assert.Equal(t, original.Media.URL, cloned.Media.URL)

	// 修改克隆不影响原对象
	cloned.Media.URL = "changed"
	cloned.Status = MessageStatusRead
	assert.Equal(t, "https://cdn.example.com/v.mp4", original.Media.URL)
	assert.Equal(t, MessageStatusPending, original.Status)
}
