/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 15:18:03
 * @FilePath: \go-chatsync\repository\redis_message_repository_test.go
 * @Description: 消息仓库 Redis 实现集成测试（需要真实Redis）
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalyes/go-chatsync/models"
)

// newTestRedisRepo 创建Redis测试仓库
// 未设置 TEST_REDIS_ADDR 时跳过测试
func newTestRedisRepo(t *testing.T) MessageRepository {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR 未设置，跳过Redis集成测试")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisMessageRepository(client, "chatsync_test:", time.Hour, logger.NewEmptyLogger())
}

// TestRedisMessageRepository_RoundTrip 测试写入与查询
func TestRedisMessageRepository_RoundTrip(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	convID := "conv-redis"

	msgs := []*models.Message{
		models.NewMessage().SetID("r-b").SetConversationID(convID).SetTimestamp(100).SetContent("b"),
		models.NewMessage().SetID("r-a").SetConversationID(convID).SetTimestamp(100).SetContent("a"),
		models.NewMessage().SetID("r-c").SetConversationID(convID).SetTimestamp(200).SetContent("c"),
	}
	require.NoError(t, repo.UpsertMany(ctx, msgs))

	t.Run("同分值按ID字典序", func(t *testing.T) {
		result, err := repo.QueryByConversation(ctx, &MessageFilter{ConversationID: convID})
		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.Equal(t, "r-a", result[0].ID)
		assert.Equal(t, "r-b", result[1].ID)
		assert.Equal(t, "r-c", result[2].ID)
	})

	t.Run("降序与计数", func(t *testing.T) {
		result, err := repo.QueryByConversation(ctx, &MessageFilter{ConversationID: convID, Descending: true})
		require.NoError(t, err)
		assert.Equal(t, "r-c", result[0].ID)

		count, err := repo.CountByConversation(ctx, convID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("不存在的消息返回nil", func(t *testing.T) {
		loaded, err := repo.GetByID(ctx, "no-such-id")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

// TestRedisMessageRepository_StatusMachine 测试状态机约束
func TestRedisMessageRepository_StatusMachine(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	msg := models.NewMessage().SetID("r-status").SetConversationID("conv-rs").SetTimestamp(100)
	require.NoError(t, repo.Upsert(ctx, msg))

	applied, err := repo.UpdateStatus(ctx, "r-status", models.MessageStatusDelivered)
	require.NoError(t, err)
	assert.True(t, applied)

	// 回退被拒绝
	applied, err = repo.UpdateStatus(ctx, "r-status", models.MessageStatusSent)
	require.NoError(t, err)
	assert.False(t, applied)

	loaded, err := repo.GetByID(ctx, "r-status")
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusDelivered, loaded.Status)
}

// TestRedisMessageRepository_ReplaceID 测试ID替换
func TestRedisMessageRepository_ReplaceID(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	convID := "conv-rr"

	msg := models.NewMessage().SetID("r-client").SetConversationID(convID).SetTimestamp(100)
	require.NoError(t, repo.Upsert(ctx, msg))
	require.NoError(t, repo.ReplaceID(ctx, "r-client", "r-server"))

	old, err := repo.GetByID(ctx, "r-client")
	require.NoError(t, err)
	assert.Nil(t, old)

	replaced, err := repo.GetByID(ctx, "r-server")
	require.NoError(t, err)
	require.NotNil(t, replaced)

	result, err := repo.QueryByConversation(ctx, &MessageFilter{ConversationID: convID})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "r-server", result[0].ID, "索引同步更新")
}

// TestRedisMessageRepository_Delete 测试删除同时清理索引
func TestRedisMessageRepository_Delete(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	convID := "conv-rd"

	msg := models.NewMessage().SetID("r-del").SetConversationID(convID).SetTimestamp(100)
	require.NoError(t, repo.Upsert(ctx, msg))
	require.NoError(t, repo.Delete(ctx, "r-del"))

	count, err := repo.CountByConversation(ctx, convID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// TestRedisMessageRepository_UpsertKeepsAdvancedStatus 测试旧快照回写不回退状态
func TestRedisMessageRepository_UpsertKeepsAdvancedStatus(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()

	msg := models.NewMessage().SetID("r-guard").SetConversationID("conv-rg").SetTimestamp(100)
	require.NoError(t, repo.Upsert(ctx, msg))

	applied, err := repo.UpdateStatus(ctx, "r-guard", models.MessageStatusDelivered)
	require.NoError(t, err)
	require.True(t, applied)

	stale := msg.Clone()
	stale.Status = models.MessageStatusSent
	stale.Content = "rewritten"
	require.NoError(t, repo.Upsert(ctx, stale))

	loaded, err := repo.GetByID(ctx, "r-guard")
	require.NoError(t, err)
	assert.Equal(t, models.MessageStatusDelivered, loaded.Status, "delivered不被旧快照的sent拉回")
	assert.Equal(t, "rewritten", loaded.Content, "非状态字段正常覆盖")
}

// TestRedisMessageRepository_UpdateTimestamp 测试时间戳更新同步索引分值
func TestRedisMessageRepository_UpdateTimestamp(t *testing.T) {
	repo := newTestRedisRepo(t)
	ctx := context.Background()
	convID := "conv-rts"

	require.NoError(t, repo.UpsertMany(ctx, []*models.Message{
		models.NewMessage().SetID("r-t1").SetConversationID(convID).SetTimestamp(100).SetStatus(models.MessageStatusDelivered),
		models.NewMessage().SetID("r-t2").SetConversationID(convID).SetTimestamp(200),
	}))

	require.NoError(t, repo.UpdateTimestamp(ctx, "r-t1", 300))

	loaded, err := repo.GetByID(ctx, "r-t1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), loaded.Timestamp)
	assert.Equal(t, models.MessageStatusDelivered, loaded.Status, "状态不受影响")

	result, err := repo.QueryByConversation(ctx, &MessageFilter{ConversationID: convID})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "r-t1", result[1].ID, "索引分值同步更新")
}
