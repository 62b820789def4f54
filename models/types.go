/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-22 10:11:40
 * @FilePath: \go-chatsync\models\types.go
 * @Description: 基础类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

// IDGenerator ID生成器接口
// 用于生成消息ID、请求ID等唯一标识符
type IDGenerator interface {
	GenerateTraceID() string
	GenerateSpanID() string
	GenerateRequestID() string
	GenerateCorrelationID() string
}

// ChangeKind 会话变更类型
type ChangeKind string

const (
	ChangeKindMessageUpserted  ChangeKind = "message_upserted"  // 消息新增或整体更新
	ChangeKindStatusChanged    ChangeKind = "status_changed"    // 消息状态变更
	ChangeKindMessageDeleted   ChangeKind = "message_deleted"   // 消息删除
	ChangeKindConversationRead ChangeKind = "conversation_read" // 会话整体已读
)

// String 实现Stringer接口
func (k ChangeKind) String() string {
	return string(k)
}

// Change 会话变更事件，推送给订阅方
// Messages 为变更后的会话完整消息列表（升序），每个事件自洽：
// 消费过慢被丢弃的旧事件可由后续任一事件完整补齐视图
type Change struct {
	Kind           ChangeKind `json:"kind"`                 // 变更类型
	ConversationID string     `json:"conversation_id"`      // 会话ID
	MessageID      string     `json:"message_id,omitempty"` // 受影响的消息ID（会话级变更为空）
	Messages       []*Message `json:"messages"`             // 变更后的完整消息列表
}
