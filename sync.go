/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 11:30:19
 * @FilePath: \go-chatsync\sync.go
 * @Description: 缓存优先的消息拉取与远端操作
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"context"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/mathx"

	"github.com/kamalyes/go-chatsync/models"
	"github.com/kamalyes/go-chatsync/remote"
	"github.com/kamalyes/go-chatsync/repository"
)

// FetchMessages 按会话分页拉取消息，(timestamp, message_id) 降序（最新在前）
// 读取策略：
//  1. 本地该页数据完整且在缓存有效期内，直接返回本地数据，不碰网络
//  2. 否则拉取远端并合并落库（状态只进不退），返回合并结果
//  3. 远端失败时静默回退本地数据（认证错误除外，始终上抛）；
//     本地也为空才返回 ErrStaleCache
func (e *Engine) FetchMessages(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error) {
	if e.Closed() {
		return nil, ErrEngineClosed
	}
	if conversationID == "" {
		return nil, errorx.NewError(ErrTypeInvalidArgument, "conversation id is empty")
	}
	limit = mathx.IF(limit <= 0, e.Config.PageSize, limit)

	filter := &repository.MessageFilter{
		ConversationID: conversationID,
		Limit:          limit,
		Offset:         offset,
		Descending:     true,
	}
	local, err := e.Store.QueryByConversation(ctx, filter)
	if err != nil {
		return nil, errorx.WrapError("query local messages", err)
	}

	if len(local) >= limit && e.pageFresh(local) {
		return local, nil
	}

	fetched, err := e.Remote.GetMessages(ctx, conversationID, limit, offset)
	if err != nil {
		if remote.IsAuthError(err) {
			return nil, err
		}
		if len(local) > 0 {
			e.Logger.DebugKV("远端不可达，回退本地缓存", "conversation_id", conversationID, "cached", len(local))
			return local, nil
		}
		return nil, ErrStaleCache
	}

	if err := e.mergePage(ctx, fetched); err != nil {
		return nil, err
	}
	merged, err := e.Store.QueryByConversation(ctx, filter)
	if err != nil {
		return nil, errorx.WrapError("query merged messages", err)
	}
	return merged, nil
}

// pageFresh 判断本地页是否在缓存有效期内
// 以页内最旧的 CachedAt 为准，任一条超期即视为过期
func (e *Engine) pageFresh(page []*models.Message) bool {
	if len(page) == 0 {
		return false
	}
	oldest := page[0].CachedAt
	for _, msg := range page[1:] {
		if msg.CachedAt < oldest {
			oldest = msg.CachedAt
		}
	}
	if oldest <= 0 {
		return false
	}
	age := time.Since(time.UnixMilli(oldest))
	return age < e.Config.CacheValidity
}

// mergePage 将远端页合并进本地存储
// 本地已有更高状态时保留本地状态，远端绝不让状态回退
func (e *Engine) mergePage(ctx context.Context, fetched []*models.Message) error {
	now := time.Now().UnixMilli()
	for _, msg := range fetched {
		existing, err := e.Store.GetByID(ctx, msg.ID)
		if err != nil {
			return errorx.WrapError("merge remote page", err)
		}
		if existing != nil && existing.Status.Rank() > msg.Status.Rank() {
			msg.Status = existing.Status
		}
		msg.CachedAt = now
	}
	if err := e.Store.UpsertMany(ctx, fetched); err != nil {
		return errorx.WrapError("persist remote page", err)
	}
	// 整页合并只广播一次，事件快照已含全部新消息
	if len(fetched) > 0 {
		e.notify(models.ChangeKindMessageUpserted, fetched[0].ConversationID, "")
	}
	return nil
}

// DeleteMessage 删除消息，远端成功后才删除本地
func (e *Engine) DeleteMessage(ctx context.Context, messageID string) error {
	if e.Closed() {
		return ErrEngineClosed
	}
	msg, err := e.Store.GetByID(ctx, messageID)
	if err != nil {
		return errorx.WrapError("load message for delete", err)
	}

	if err := e.Remote.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	if err := e.Store.Delete(ctx, messageID); err != nil {
		return errorx.WrapError("delete local message", err)
	}
	if msg != nil {
		e.notify(models.ChangeKindMessageDeleted, msg.ConversationID, messageID)
	}
	return nil
}

// MarkConversationRead 标记会话全部消息已读，远端成功后才更新本地
func (e *Engine) MarkConversationRead(ctx context.Context, conversationID string) error {
	if e.Closed() {
		return ErrEngineClosed
	}
	if err := e.Remote.MarkRead(ctx, conversationID); err != nil {
		return err
	}
	updated, err := e.Store.MarkConversationRead(ctx, conversationID)
	if err != nil {
		return errorx.WrapError("mark local conversation read", err)
	}
	if updated > 0 {
		e.notify(models.ChangeKindConversationRead, conversationID, "")
	}
	return nil
}
