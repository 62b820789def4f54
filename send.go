/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 11:08:42
 * @FilePath: \go-chatsync\send.go
 * @Description: 乐观发送流程
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"context"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/errorx"

	"github.com/kamalyes/go-chatsync/models"
)

// Send 发送消息
// 流程：
//  1. 以客户端ID落库为 pending，订阅方立即可见
//  2. 调用远端API；失败时该消息置为 failed 并返回错误
//  3. 成功后以服务端ID替换客户端ID、采纳服务端时间戳、状态推进为 sent
//  4. 服务端未广播时补发实时通道通知
func (e *Engine) Send(ctx context.Context, conversationID, content string, media *models.Media) (*models.Message, error) {
	if e.Closed() {
		return nil, ErrEngineClosed
	}
	if conversationID == "" {
		return nil, errorx.NewError(ErrTypeInvalidArgument, "conversation id is empty")
	}

	clientID := e.idGen.GenerateRequestID()
	msg := models.NewMessage().
		SetID(clientID).
		SetConversationID(conversationID).
		SetContent(content).
		SetSenderID(e.Config.SenderID).
		SetMedia(media).
		SetCachedAt(time.Now().UnixMilli())

	// 乐观写入，先于任何网络调用
	if err := e.Store.Upsert(ctx, msg); err != nil {
		return nil, errorx.WrapError("persist pending message", err)
	}
	e.notifyUpserted(msg)

	if err := ctx.Err(); err != nil {
		e.markSendFailed(ctx, clientID)
		return nil, err
	}

	result, err := e.Remote.SendMessage(ctx, conversationID, content, e.Config.SenderID, media)
	if err != nil {
		e.Logger.ErrorKV("消息发送失败", "conversation_id", conversationID, "client_id", clientID, "error", err)
		e.markSendFailed(ctx, clientID)
		return nil, err
	}

	// 服务端ID权威；推送先到时本地行已被合并丢弃
	if err := e.Store.ReplaceID(ctx, clientID, result.ServerID); err != nil {
		return nil, errorx.WrapError("replace client id", err)
	}
	if _, err := e.Store.UpdateStatus(ctx, result.ServerID, models.MessageStatusSent); err != nil {
		return nil, errorx.WrapError("advance status to sent", err)
	}

	final, err := e.Store.GetByID(ctx, result.ServerID)
	if err != nil {
		return nil, err
	}
	if final == nil {
		// 理论上不可达，落库后立即读取
		return nil, errorx.NewError(ErrTypeMessageNotFound, result.ServerID)
	}
	if result.Timestamp > 0 && final.Timestamp != result.Timestamp {
		// 列级更新只动时间戳，落库后到达的回执不会被整行回写覆盖
		if err := e.Store.UpdateTimestamp(ctx, final.ID, result.Timestamp); err != nil {
			return nil, errorx.WrapError("adopt server timestamp", err)
		}
		if refreshed, err := e.Store.GetByID(ctx, final.ID); err == nil && refreshed != nil {
			final = refreshed
		} else {
			final.Timestamp = result.Timestamp
		}
	}
	e.notifyUpserted(final)

	// 服务端已广播时不再补发，避免对端收到两份通知
	if !result.Pushed && e.Transport != nil {
		if err := e.Transport.SendChatMessage(final); err != nil {
			e.Logger.DebugKV("实时通道补发跳过", "message_id", final.ID, "error", err)
		}
	}
	return final, nil
}

// markSendFailed 发送失败时将消息置为 failed
// 使用独立上下文，原上下文可能已取消
func (e *Engine) markSendFailed(ctx context.Context, clientID string) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	applied, err := e.Store.UpdateStatus(ctx, clientID, models.MessageStatusFailed)
	if err != nil {
		e.Logger.ErrorKV("标记发送失败状态出错", "client_id", clientID, "error", err)
		return
	}
	if !applied {
		return
	}
	if msg, err := e.Store.GetByID(ctx, clientID); err == nil && msg != nil {
		e.notifyStatusChanged(msg)
	}
}

// SendTypingIndicator 发送输入状态通知
// 仅在实时通道 OPEN 时有效，其余状态静默丢弃
func (e *Engine) SendTypingIndicator(conversationID string, isTyping bool) error {
	if e.Closed() {
		return ErrEngineClosed
	}
	if e.Transport == nil {
		return nil
	}
	err := e.Transport.SendTyping(conversationID, e.Config.SenderID, isTyping)
	if err == ErrTransportNotOpen {
		return nil
	}
	return err
}
