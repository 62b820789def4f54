/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-23 22:31:10
 * @FilePath: \go-chatsync\repository\redis_message_repository.go
 * @Description: 消息存储 Redis 实现 - 会话有序集合 + 消息主体
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/json"
	"github.com/kamalyes/go-toolbox/pkg/mathx"

	"github.com/kamalyes/go-chatsync/models"
	"github.com/redis/go-redis/v9"
)

// RedisMessageRepository Redis 实现
// 存储结构：
//   - {prefix}msg:{message_id}   消息主体 JSON
//   - {prefix}conv:{conversation_id}  有序集合，score=timestamp，member=message_id
//
// 同分值成员按字典序排列，恰好满足 (timestamp, message_id) 的排序约定
type RedisMessageRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    logger.ILogger
}

// NewRedisMessageRepository 创建 Redis 消息仓库
// 参数:
//   - client: Redis 客户端 (github.com/redis/go-redis/v9)
//   - keyPrefix: key 前缀，空值使用 DefaultRedisKeyPrefix
//   - ttl: 消息主体过期时间，<=0 表示不过期
//   - log: 日志记录器
func NewRedisMessageRepository(client *redis.Client, keyPrefix string, ttl time.Duration, log logger.ILogger) MessageRepository {
	return &RedisMessageRepository{
		client:    client,
		keyPrefix: mathx.IF(keyPrefix == "", DefaultRedisKeyPrefix, keyPrefix),
		ttl:       ttl,
		logger:    log,
	}
}

// GetMessageKey 获取消息主体的 key
func (r *RedisMessageRepository) GetMessageKey(id string) string {
	return fmt.Sprintf("%smsg:%s", r.keyPrefix, id)
}

// GetConversationKey 获取会话有序集合的 key
func (r *RedisMessageRepository) GetConversationKey(conversationID string) string {
	return fmt.Sprintf("%sconv:%s", r.keyPrefix, conversationID)
}

// Upsert 插入或按 message_id 覆盖
// WATCH 乐观锁下合并状态：已有状态不能沿状态机迁移到新状态时保持原状态，
// 旧读快照回写不会造成状态回退
func (r *RedisMessageRepository) Upsert(ctx context.Context, msg *models.Message) error {
	key := r.GetMessageKey(msg.ID)

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			store := *msg
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				var existing models.Message
				if err := json.Unmarshal(data, &existing); err != nil {
					return err
				}
				if existing.Status != store.Status && !existing.Status.CanTransitionTo(store.Status) {
					store.Status = existing.Status
				}
			}
			payload, err := json.Marshal(&store)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, r.ttl)
				pipe.ZAdd(ctx, r.GetConversationKey(store.ConversationID), redis.Z{
					Score:  float64(store.Timestamp),
					Member: store.ID,
				})
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// UpsertMany 批量插入或覆盖，状态合并规则与 Upsert 一致
func (r *RedisMessageRepository) UpsertMany(ctx context.Context, msgs []*models.Message) error {
	for _, msg := range msgs {
		if err := r.Upsert(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetByID 按消息ID查询，不存在时返回 (nil, nil)
func (r *RedisMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	data, err := r.client.Get(ctx, r.GetMessageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// QueryByConversation 按会话查询，(timestamp, message_id) 排序
func (r *RedisMessageRepository) QueryByConversation(ctx context.Context, filter *MessageFilter) ([]*models.Message, error) {
	limit := mathx.IF(filter.Limit <= 0, DefaultQueryLimit, min(filter.Limit, MaxQueryLimit))
	start := int64(filter.Offset)
	stop := start + int64(limit) - 1

	key := r.GetConversationKey(filter.ConversationID)
	var ids []string
	var err error
	if filter.Descending {
		ids, err = r.client.ZRevRange(ctx, key, start, stop).Result()
	} else {
		ids, err = r.client.ZRange(ctx, key, start, stop).Result()
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Message{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.GetMessageKey(id))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]*models.Message, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// 主体已过期但索引仍在，跳过
			continue
		}
		var msg models.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// CountByConversation 会话内消息总数
func (r *RedisMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.client.ZCard(ctx, r.GetConversationKey(conversationID)).Result()
}

// UpdateStatus 条件更新消息状态
// 使用 WATCH 乐观锁保证并发迁移按状态机合法性竞争
func (r *RedisMessageRepository) UpdateStatus(ctx context.Context, id string, status models.MessageStatus) (bool, error) {
	key := r.GetMessageKey(id)
	applied := false

	// 乐观锁冲突时重试
	for attempt := 0; attempt < 3; attempt++ {
		applied = false
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			var msg models.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				return err
			}
			if !msg.Status.CanTransitionTo(status) {
				return nil
			}
			msg.Status = status
			updated, err := json.Marshal(&msg)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, r.ttl)
				return nil
			})
			if err == nil {
				applied = true
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return applied, err
	}
	return false, redis.TxFailedErr
}

// UpdateTimestamp 仅更新消息时间戳与索引分值，不触碰状态
func (r *RedisMessageRepository) UpdateTimestamp(ctx context.Context, id string, timestamp int64) error {
	key := r.GetMessageKey(id)

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			var msg models.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				return err
			}
			if msg.Timestamp == timestamp {
				return nil
			}
			msg.Timestamp = timestamp
			payload, err := json.Marshal(&msg)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, r.ttl)
				pipe.ZAdd(ctx, r.GetConversationKey(msg.ConversationID), redis.Z{
					Score:  float64(timestamp),
					Member: id,
				})
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// MarkConversationRead 会话内未读消息批量置为已读
func (r *RedisMessageRepository) MarkConversationRead(ctx context.Context, conversationID string) (int64, error) {
	ids, err := r.client.ZRange(ctx, r.GetConversationKey(conversationID), 0, -1).Result()
	if err != nil {
		return 0, err
	}

	var updated int64
	for _, id := range ids {
		msg, err := r.GetByID(ctx, id)
		if err != nil {
			return updated, err
		}
		if msg == nil {
			continue
		}
		if msg.Status != models.MessageStatusSent && msg.Status != models.MessageStatusDelivered {
			continue
		}
		applied, err := r.UpdateStatus(ctx, id, models.MessageStatusRead)
		if err != nil {
			return updated, err
		}
		if applied {
			updated++
		}
	}
	return updated, nil
}

// ReplaceID 将客户端ID替换为服务端ID
func (r *RedisMessageRepository) ReplaceID(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	msg, err := r.GetByID(ctx, oldID)
	if err != nil || msg == nil {
		return err
	}
	convKey := r.GetConversationKey(msg.ConversationID)

	existing, err := r.GetByID(ctx, newID)
	if err != nil {
		return err
	}
	if existing != nil {
		// 服务端推送先到，丢弃本地行
		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, r.GetMessageKey(oldID))
			pipe.ZRem(ctx, convKey, oldID)
			return nil
		})
		return err
	}

	msg.ID = newID
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.GetMessageKey(newID), data, r.ttl)
		pipe.Del(ctx, r.GetMessageKey(oldID))
		pipe.ZRem(ctx, convKey, oldID)
		pipe.ZAdd(ctx, convKey, redis.Z{Score: float64(msg.Timestamp), Member: newID})
		return nil
	})
	return err
}

// Delete 按消息ID删除
func (r *RedisMessageRepository) Delete(ctx context.Context, id string) error {
	msg, err := r.GetByID(ctx, id)
	if err != nil || msg == nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.GetMessageKey(id))
		pipe.ZRem(ctx, r.GetConversationKey(msg.ConversationID), id)
		return nil
	})
	return err
}
