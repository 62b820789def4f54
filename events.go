/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 11:52:08
 * @FilePath: \go-chatsync\events.go
 * @Description: 入站事件处理
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"context"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/json"

	"github.com/kamalyes/go-chatsync/models"
)

// handleEvent 分发实时通道入站事件
// 事件处理不携带调用方上下文，落库使用引擎自身生命周期
func (e *Engine) handleEvent(event *models.Event) {
	if e.Closed() {
		return
	}
	ctx := context.Background()

	switch event.Type {
	case models.EventTypeChatMessage:
		var payload models.ChatMessagePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			e.Logger.ErrorKV("聊天消息事件解析失败", "error", err)
			return
		}
		e.applyChatMessage(ctx, &payload)

	case models.EventTypeDeliveryReceipt:
		var payload models.DeliveryReceiptPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			e.Logger.ErrorKV("送达回执解析失败", "error", err)
			return
		}
		e.applyStatusEvent(ctx, payload.MessageID, models.MessageStatusDelivered)

	case models.EventTypeReadReceipt:
		var payload models.ReadReceiptPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			e.Logger.ErrorKV("已读回执解析失败", "error", err)
			return
		}
		e.applyReadReceipt(ctx, &payload)

	case models.EventTypeTypingIndicator:
		var payload models.TypingPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			e.Logger.ErrorKV("输入状态解析失败", "error", err)
			return
		}
		if f := e.onTyping.Load(); f != nil {
			f.(func(*models.TypingPayload))(&payload)
		}

	case models.EventTypeError:
		var payload models.ErrorPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			e.Logger.ErrorKV("服务端错误事件解析失败", "error", err)
			return
		}
		e.Logger.ErrorKV("服务端错误", "code", payload.Code, "message", payload.Message)
		if f := e.onServerError.Load(); f != nil {
			f.(func(*models.ErrorPayload))(&payload)
		}

	default:
		e.Logger.DebugKV("忽略未知事件类型", "type", event.Type.String())
	}
}

// applyChatMessage 应用服务端推送的新消息
// 推送消息默认已送达；本地已有更高状态时保留本地状态
func (e *Engine) applyChatMessage(ctx context.Context, payload *models.ChatMessagePayload) {
	kind := models.SenderKindRemoteParty
	if payload.SenderID == e.Config.SenderID {
		kind = models.SenderKindUser
	}
	msg := &models.Message{
		ID:             payload.MessageID,
		ConversationID: payload.ConversationID,
		Content:        payload.Content,
		SenderID:       payload.SenderID,
		SenderKind:     kind,
		Timestamp:      payload.Timestamp,
		Status:         models.MessageStatusDelivered,
		Media:          payload.Media,
		CachedAt:       time.Now().UnixMilli(),
	}

	existing, err := e.Store.GetByID(ctx, msg.ID)
	if err != nil {
		e.Logger.ErrorKV("推送消息查重失败", "message_id", msg.ID, "error", err)
		return
	}
	if existing != nil && existing.Status.Rank() > msg.Status.Rank() {
		msg.Status = existing.Status
	}
	if err := e.Store.Upsert(ctx, msg); err != nil {
		e.Logger.ErrorKV("推送消息落库失败", "message_id", msg.ID, "error", err)
		return
	}
	e.notifyUpserted(msg)
}

// applyStatusEvent 应用单条消息的状态推进
func (e *Engine) applyStatusEvent(ctx context.Context, messageID string, status models.MessageStatus) {
	applied, err := e.Store.UpdateStatus(ctx, messageID, status)
	if err != nil {
		e.Logger.ErrorKV("状态推进失败", "message_id", messageID, "status", status.String(), "error", err)
		return
	}
	if !applied {
		return
	}
	msg, err := e.Store.GetByID(ctx, messageID)
	if err != nil || msg == nil {
		return
	}
	e.notifyStatusChanged(msg)
}

// applyReadReceipt 应用已读回执
// MessageID 为空表示整个会话已读
func (e *Engine) applyReadReceipt(ctx context.Context, payload *models.ReadReceiptPayload) {
	if payload.MessageID != "" {
		e.applyStatusEvent(ctx, payload.MessageID, models.MessageStatusRead)
		return
	}
	updated, err := e.Store.MarkConversationRead(ctx, payload.ConversationID)
	if err != nil {
		e.Logger.ErrorKV("会话已读回执应用失败", "conversation_id", payload.ConversationID, "error", err)
		return
	}
	if updated > 0 {
		e.notify(models.ChangeKindConversationRead, payload.ConversationID, "")
	}
}
