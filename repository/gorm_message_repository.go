/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-23 21:07:48
 * @FilePath: \go-chatsync\repository\gorm_message_repository.go
 * @Description: 消息存储 GORM 实现
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

import (
	"context"
	"errors"

	"github.com/kamalyes/go-logger"
	sqlbuilder "github.com/kamalyes/go-sqlbuilder/repository"
	"github.com/kamalyes/go-toolbox/pkg/mathx"

	"github.com/kamalyes/go-chatsync/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 性能优化建议：
// 1. 复合索引 (conversation_id, timestamp) 覆盖会话内分页查询
// 2. message_id 唯一索引同时承担 upsert 冲突判定

// GormMessageRepository GORM 实现
type GormMessageRepository struct {
	db     *gorm.DB
	logger logger.ILogger
}

// NewGormMessageRepository 创建 GORM 消息仓库
// 参数:
//   - db: GORM 数据库实例
//   - log: 日志记录器
func NewGormMessageRepository(db *gorm.DB, log logger.ILogger) MessageRepository {
	return &GormMessageRepository{
		db:     db,
		logger: log,
	}
}

// upsertColumns 冲突时覆盖的业务列，status 不在其中
var upsertColumns = []string{
	"conversation_id", "content", "sender_id", "sender_kind",
	"timestamp", "media_type", "media_url", "media_thumbnail",
	"media_duration", "cached_at", "updated_at",
}

// upsertRecords 插入或按 message_id 覆盖
// 两步同处一个事务：先覆盖非状态列，再按状态机条件推进 status，
// 旧读快照回写不会把已推进的状态拉回去
func upsertRecords(tx *gorm.DB, records []*MessageRecord) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).CreateInBatches(records, 500).Error; err != nil {
		return err
	}
	for _, record := range records {
		sources := transitionSources(models.MessageStatus(record.Status))
		if len(sources) == 0 {
			continue
		}
		if err := tx.Model(&MessageRecord{}).
			Where("message_id = ? AND status IN ?", record.MessageID, sources).
			Update("status", record.Status).Error; err != nil {
			return err
		}
	}
	return nil
}

// Upsert 插入或按 message_id 覆盖，状态只沿合法迁移推进
func (r *GormMessageRepository) Upsert(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertRecords(tx, []*MessageRecord{FromMessage(msg)})
	})
}

// UpsertMany 批量插入或覆盖
func (r *GormMessageRepository) UpsertMany(ctx context.Context, msgs []*models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	records := make([]*MessageRecord, 0, len(msgs))
	for _, msg := range msgs {
		records = append(records, FromMessage(msg))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsertRecords(tx, records)
	})
}

// GetByID 按消息ID查询，不存在时返回 (nil, nil)
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var record MessageRecord
	err := r.db.WithContext(ctx).Where("message_id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.ToMessage(), nil
}

// QueryByConversation 按会话查询，(timestamp, message_id) 排序
func (r *GormMessageRepository) QueryByConversation(ctx context.Context, filter *MessageFilter) ([]*models.Message, error) {
	var records []*MessageRecord

	direction := mathx.IF(filter.Descending, "DESC", "ASC")

	// 使用 go-sqlbuilder 构建查询
	query := sqlbuilder.NewQuery()
	query.AddFilterIfNotEmpty("conversation_id", filter.ConversationID)
	query.AddOrder("timestamp", direction)
	query.AddOrder("message_id", direction)

	limit := mathx.IF(filter.Limit <= 0, DefaultQueryLimit, min(filter.Limit, MaxQueryLimit))

	gormDB := r.db.WithContext(ctx)
	gormDB = sqlbuilder.ApplyFilters(gormDB, query.Filters)
	gormDB = sqlbuilder.ApplyOrders(gormDB, query.Orders)
	gormDB = gormDB.Limit(limit)
	if filter.Offset > 0 {
		gormDB = gormDB.Offset(filter.Offset)
	}

	if err := gormDB.Find(&records).Error; err != nil {
		return nil, err
	}

	msgs := make([]*models.Message, 0, len(records))
	for _, record := range records {
		msgs = append(msgs, record.ToMessage())
	}
	return msgs, nil
}

// CountByConversation 会话内消息总数
func (r *GormMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&MessageRecord{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

// UpdateStatus 条件更新消息状态
// WHERE 条件限定为状态机允许的前置状态，天然保证并发下按迁移合法性竞争，
// 而非按墙钟时间竞争（后写的非法迁移不会覆盖先写的合法迁移）
func (r *GormMessageRepository) UpdateStatus(ctx context.Context, id string, status models.MessageStatus) (bool, error) {
	sources := transitionSources(status)
	if len(sources) == 0 {
		return false, nil
	}

	result := r.db.WithContext(ctx).Model(&MessageRecord{}).
		Where("message_id = ? AND status IN ?", id, sources).
		Update("status", status.String())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateTimestamp 仅更新消息时间戳，不触碰状态列
func (r *GormMessageRepository) UpdateTimestamp(ctx context.Context, id string, timestamp int64) error {
	return r.db.WithContext(ctx).Model(&MessageRecord{}).
		Where("message_id = ?", id).
		Update("timestamp", timestamp).Error
}

// MarkConversationRead 会话内未读消息批量置为已读
func (r *GormMessageRepository) MarkConversationRead(ctx context.Context, conversationID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&MessageRecord{}).
		Where("conversation_id = ? AND status IN ?", conversationID, []string{
			models.MessageStatusSent.String(),
			models.MessageStatusDelivered.String(),
		}).
		Update("status", models.MessageStatusRead.String())
	return result.RowsAffected, result.Error
}

// ReplaceID 将客户端ID替换为服务端ID
func (r *GormMessageRepository) ReplaceID(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&MessageRecord{}).Where("message_id = ?", newID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// 服务端推送先到，服务端ID的行已存在且状态更权威，丢弃本地行
			return tx.Where("message_id = ?", oldID).Delete(&MessageRecord{}).Error
		}
		return tx.Model(&MessageRecord{}).
			Where("message_id = ?", oldID).
			Update("message_id", newID).Error
	})
}

// Delete 按消息ID删除
func (r *GormMessageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("message_id = ?", id).Delete(&MessageRecord{}).Error
}

// transitionSources 返回允许迁移到 target 的前置状态集合
func transitionSources(target models.MessageStatus) []string {
	all := []models.MessageStatus{
		models.MessageStatusPending,
		models.MessageStatusSent,
		models.MessageStatusDelivered,
		models.MessageStatusRead,
		models.MessageStatusFailed,
	}
	sources := make([]string, 0, len(all))
	for _, s := range all {
		if s.CanTransitionTo(target) {
			sources = append(sources, s.String())
		}
	}
	return sources
}
