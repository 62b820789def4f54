/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-22 09:40:12
 * @FilePath: \go-chatsync\repository\message_repository.go
 * @Description: 本地消息存储契约与持久化记录
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

import (
	"context"
	"time"

	"github.com/kamalyes/go-chatsync/models"
)

// MessageRepository 本地消息存储接口
// 约束：message_id 全局唯一（插入即按主键覆盖，绝不重复追加）；
// 排序统一按 (timestamp, message_id)；
// 状态写入遵循状态机单调性：Upsert/UpsertMany 冲突时仅沿合法迁移推进 status，
// UpdateStatus 的条件更新同理
type MessageRepository interface {
	// Upsert 插入或按 message_id 覆盖
	// 冲突时覆盖业务列，status 仅在状态机允许的迁移上推进，绝不回退
	Upsert(ctx context.Context, msg *models.Message) error

	// UpsertMany 批量插入或覆盖，状态推进规则与 Upsert 一致
	UpsertMany(ctx context.Context, msgs []*models.Message) error

	// GetByID 按消息ID查询，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*models.Message, error)

	// QueryByConversation 按会话查询，(timestamp, message_id) 排序
	QueryByConversation(ctx context.Context, filter *MessageFilter) ([]*models.Message, error)

	// CountByConversation 会话内消息总数
	CountByConversation(ctx context.Context, conversationID string) (int64, error)

	// UpdateStatus 条件更新消息状态，仅在状态机允许的迁移上生效
	// 返回是否实际发生了更新
	UpdateStatus(ctx context.Context, id string, status models.MessageStatus) (bool, error)

	// UpdateTimestamp 仅更新消息时间戳，不触碰状态列
	// 采纳服务端时间戳时使用，避免整行回写与并发回执竞争
	UpdateTimestamp(ctx context.Context, id string, timestamp int64) error

	// MarkConversationRead 会话内未读消息批量置为已读
	// 返回受影响的行数
	MarkConversationRead(ctx context.Context, conversationID string) (int64, error)

	// ReplaceID 将客户端ID替换为服务端ID，保留会话内排序位置
	// 若服务端ID的行已存在（推送先于响应到达），则丢弃客户端ID的行
	ReplaceID(ctx context.Context, oldID, newID string) error

	// Delete 按消息ID删除
	Delete(ctx context.Context, id string) error
}

// MessageFilter 消息查询过滤器
type MessageFilter struct {
	// ConversationID 会话ID
	ConversationID string
	// Limit 数量限制，<=0 时使用 DefaultQueryLimit
	Limit int
	// Offset 偏移量
	Offset int
	// Descending true 按 (timestamp, message_id) 降序（最新在前）
	Descending bool
}

// MessageRecord 消息持久化记录
// 插入冲突策略为显式 upsert：按 message_id 覆盖全部业务字段
type MessageRecord struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	MessageID      string    `gorm:"column:message_id;size:64;uniqueIndex;not null"`
	ConversationID string    `gorm:"column:conversation_id;size:64;index:idx_conversation_ts,priority:1;not null"`
	Content        string    `gorm:"column:content;type:text"`
	SenderID       string    `gorm:"column:sender_id;size:64"`
	SenderKind     string    `gorm:"column:sender_kind;size:16"`
	Timestamp      int64     `gorm:"column:timestamp;index:idx_conversation_ts,priority:2"`
	Status         string    `gorm:"column:status;size:16;index"`
	MediaType      string    `gorm:"column:media_type;size:16"`
	MediaURL       string    `gorm:"column:media_url;size:512"`
	MediaThumbnail string    `gorm:"column:media_thumbnail;size:512"`
	MediaDuration  int64     `gorm:"column:media_duration"`
	CachedAt       int64     `gorm:"column:cached_at"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (MessageRecord) TableName() string {
	return "chat_messages"
}

// FromMessage 由消息模型构建持久化记录
func FromMessage(msg *models.Message) *MessageRecord {
	record := &MessageRecord{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		SenderID:       msg.SenderID,
		SenderKind:     msg.SenderKind.String(),
		Timestamp:      msg.Timestamp,
		Status:         msg.Status.String(),
		CachedAt:       msg.CachedAt,
	}
	if msg.Media != nil {
		record.MediaType = msg.Media.Type.String()
		record.MediaURL = msg.Media.URL
		record.MediaThumbnail = msg.Media.ThumbnailURL
		record.MediaDuration = msg.Media.Duration
	}
	return record
}

// ToMessage 转换为消息模型
func (r *MessageRecord) ToMessage() *models.Message {
	msg := &models.Message{
		ID:             r.MessageID,
		ConversationID: r.ConversationID,
		Content:        r.Content,
		SenderID:       r.SenderID,
		SenderKind:     models.SenderKind(r.SenderKind),
		Timestamp:      r.Timestamp,
		Status:         models.MessageStatus(r.Status),
		CachedAt:       r.CachedAt,
	}
	if r.MediaURL != "" {
		msg.Media = &models.Media{
			Type:         models.MediaType(r.MediaType),
			URL:          r.MediaURL,
			ThumbnailURL: r.MediaThumbnail,
			Duration:     r.MediaDuration,
		}
	}
	return msg
}
