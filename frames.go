/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 09:35:10
 * @FilePath: \go-chatsync\frames.go
 * @Description: 出站帧便捷方法
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"github.com/kamalyes/go-chatsync/models"
)

// SendChatMessage 通过实时通道广播消息通知
// 仅作为 HTTP 发送成功后的补充通知，消息本体以远端API响应为准
func (t *Transport) SendChatMessage(msg *models.Message) error {
	return t.Send(models.NewChatMessageFrame(msg))
}

// SendTyping 发送输入状态
func (t *Transport) SendTyping(conversationID, userID string, isTyping bool) error {
	return t.Send(models.NewTypingFrame(conversationID, userID, isTyping))
}
