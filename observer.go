/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 10:40:55
 * @FilePath: \go-chatsync\observer.go
 * @Description: 会话订阅与变更通知
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"context"
	"sync"

	"github.com/kamalyes/go-chatsync/models"
	"github.com/kamalyes/go-chatsync/repository"
)

// ConversationSubscription 会话订阅
// 每个变更事件携带会话当前的完整消息列表，事件之间自洽；
// 有界缓冲满时丢弃最旧事件等价于快照合并，消费方不丢消息也不阻塞写路径
type ConversationSubscription struct {
	conversationID string
	ch             chan *models.Change
	mu             sync.Mutex
	closed         bool
	engine         *Engine
}

// ConversationID 返回订阅的会话ID
func (s *ConversationSubscription) ConversationID() string {
	return s.conversationID
}

// Changes 返回变更事件通道
func (s *ConversationSubscription) Changes() <-chan *models.Change {
	return s.ch
}

// push 投递变更事件，缓冲满时丢弃最旧事件腾位
// 事件携带完整快照，被丢弃的事件不造成任何消息丢失
func (s *ConversationSubscription) push(change *models.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- change:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// detach 关闭事件通道，不从引擎注销（引擎关闭时批量调用）
func (s *ConversationSubscription) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Close 取消订阅
func (s *ConversationSubscription) Close() {
	s.engine.unsubscribe(s)
	s.detach()
}

// Subscribe 订阅会话变更
// 返回订阅句柄与当前本地快照（按 (timestamp, message_id) 升序）；
// 同时将会话加入实时通道的订阅列表
func (e *Engine) Subscribe(ctx context.Context, conversationID string) (*ConversationSubscription, []*models.Message, error) {
	if e.Closed() {
		return nil, nil, ErrEngineClosed
	}

	snapshot, err := e.conversationSnapshot(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}

	sub := &ConversationSubscription{
		conversationID: conversationID,
		ch:             make(chan *models.Change, e.Config.ObserverBufferSize),
		engine:         e,
	}
	e.subMu.Lock()
	e.subscribers[conversationID] = append(e.subscribers[conversationID], sub)
	e.subMu.Unlock()

	if e.Transport != nil {
		if err := e.Transport.JoinConversation(conversationID); err != nil {
			e.Logger.DebugKV("加入会话推迟到重连后", "conversation_id", conversationID, "error", err)
		}
	}
	return sub, snapshot, nil
}

// unsubscribe 从引擎注销订阅
// 会话的最后一个订阅注销后离开实时通道
func (e *Engine) unsubscribe(sub *ConversationSubscription) {
	e.subMu.Lock()
	subs := e.subscribers[sub.conversationID]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(e.subscribers, sub.conversationID)
	} else {
		e.subscribers[sub.conversationID] = subs
	}
	last := len(subs) == 0
	e.subMu.Unlock()

	if last && e.Transport != nil && !e.Closed() {
		if err := e.Transport.LeaveConversation(sub.conversationID); err != nil {
			e.Logger.DebugKV("离开会话失败", "conversation_id", sub.conversationID, "error", err)
		}
	}
}

// conversationSnapshot 读取会话当前消息列表
// 按降序取最新一页后翻转为升序，超出 SnapshotLimit 的会话不丢最新消息
func (e *Engine) conversationSnapshot(ctx context.Context, conversationID string) ([]*models.Message, error) {
	msgs, err := e.Store.QueryByConversation(ctx, &repository.MessageFilter{
		ConversationID: conversationID,
		Limit:          e.Config.SnapshotLimit,
		Descending:     true,
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// notify 向会话的全部订阅方广播变更
// 每次变更重查会话快照随事件投递，订阅方任意时刻拿到的都是完整视图
func (e *Engine) notify(kind models.ChangeKind, conversationID, messageID string) {
	e.subMu.RLock()
	subs := make([]*ConversationSubscription, len(e.subscribers[conversationID]))
	copy(subs, e.subscribers[conversationID])
	e.subMu.RUnlock()
	if len(subs) == 0 {
		return
	}

	snapshot, err := e.conversationSnapshot(context.Background(), conversationID)
	if err != nil {
		e.Logger.ErrorKV("订阅快照查询失败", "conversation_id", conversationID, "error", err)
		return
	}
	change := &models.Change{
		Kind:           kind,
		ConversationID: conversationID,
		MessageID:      messageID,
		Messages:       snapshot,
	}
	for _, sub := range subs {
		sub.push(change)
	}
}

// notifyUpserted 广播消息新增/更新
func (e *Engine) notifyUpserted(msg *models.Message) {
	e.notify(models.ChangeKindMessageUpserted, msg.ConversationID, msg.ID)
}

// notifyStatusChanged 广播消息状态变更
func (e *Engine) notifyStatusChanged(msg *models.Message) {
	e.notify(models.ChangeKindStatusChanged, msg.ConversationID, msg.ID)
}
