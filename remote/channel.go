/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-22 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 14:27:52
 * @FilePath: \go-chatsync\remote\channel.go
 * @Description: 远端消息通道 - HTTP 实现
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/json"

	"github.com/kamalyes/go-chatsync/models"
)

// 远端通道错误码 (82300-82399)
const (
	ErrTypeRemoteNetwork errorx.ErrorType = 82301 // 远端网络错误
	ErrTypeRemoteAPI     errorx.ErrorType = 82302 // 远端API错误
	ErrTypeRemoteAuth    errorx.ErrorType = 82303 // 远端认证错误
)

func init() {
	errorx.RegisterError(ErrTypeRemoteNetwork, "remote request failed: %s")
	errorx.RegisterError(ErrTypeRemoteAPI, "remote api error (status %d): %s")
	errorx.RegisterError(ErrTypeRemoteAuth, "remote authentication rejected")
}

// SendResult 发送消息的远端响应
type SendResult struct {
	ServerID  string `json:"message_id"` // 服务端分配的消息ID
	Timestamp int64  `json:"timestamp"`  // 服务端时间戳（毫秒）
	Pushed    bool   `json:"pushed"`     // 服务端是否已经通过实时通道广播本消息
}

// Channel 远端消息通道契约
// 所有方法的错误均已归类：网络错误可重试，API/认证错误不可重试
type Channel interface {
	// SendMessage 发送消息，返回服务端分配的ID与时间戳
	SendMessage(ctx context.Context, conversationID, content, senderID string, media *models.Media) (*SendResult, error)

	// GetMessages 按会话分页拉取消息，按 (timestamp, message_id) 升序
	GetMessages(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error)

	// DeleteMessage 删除远端消息
	DeleteMessage(ctx context.Context, messageID string) error

	// MarkRead 标记会话内全部消息为已读
	MarkRead(ctx context.Context, conversationID string) error
}

// HTTPChannel Channel 的 HTTP 实现
type HTTPChannel struct {
	baseURL string
	client  *http.Client
	logger  logger.ILogger
}

// NewHTTPChannel 创建 HTTP 远端通道
// 参数:
//   - baseURL: API 基础地址，例如 https://api.example.com/v1
//   - client: HTTP 客户端，传 nil 使用 30s 超时的默认客户端；
//     凭据注入通过 client.Transport 挂载 AuthTransport 完成
//   - log: 日志记录器
func NewHTTPChannel(baseURL string, client *http.Client, log logger.ILogger) *HTTPChannel {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPChannel{
		baseURL: baseURL,
		client:  client,
		logger:  log,
	}
}

// sendMessageRequest 发送消息请求体
type sendMessageRequest struct {
	ConversationID string        `json:"conversation_id"`
	Content        string        `json:"content"`
	SenderID       string        `json:"sender_id"`
	Media          *models.Media `json:"media,omitempty"`
}

// messagesResponse 分页拉取响应体
type messagesResponse struct {
	Messages []*messagePayload `json:"messages"`
}

// messagePayload 远端消息载荷
type messagePayload struct {
	MessageID      string        `json:"message_id"`
	ConversationID string        `json:"conversation_id"`
	Content        string        `json:"content"`
	SenderID       string        `json:"sender_id"`
	Timestamp      int64         `json:"timestamp"`
	Status         string        `json:"status,omitempty"`
	Media          *models.Media `json:"media,omitempty"`
}

// SendMessage 发送消息
func (c *HTTPChannel) SendMessage(ctx context.Context, conversationID, content, senderID string, media *models.Media) (*SendResult, error) {
	body := &sendMessageRequest{
		ConversationID: conversationID,
		Content:        content,
		SenderID:       senderID,
		Media:          media,
	}
	var result SendResult
	path := fmt.Sprintf("/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMessages 按会话分页拉取消息
func (c *HTTPChannel) GetMessages(ctx context.Context, conversationID string, limit, offset int) ([]*models.Message, error) {
	path := fmt.Sprintf("/conversations/%s/messages?limit=%s&offset=%s",
		url.PathEscape(conversationID), strconv.Itoa(limit), strconv.Itoa(offset))

	var resp messagesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	msgs := make([]*models.Message, 0, len(resp.Messages))
	for _, p := range resp.Messages {
		msgs = append(msgs, p.toMessage())
	}
	return msgs, nil
}

// DeleteMessage 删除远端消息
func (c *HTTPChannel) DeleteMessage(ctx context.Context, messageID string) error {
	path := fmt.Sprintf("/messages/%s", url.PathEscape(messageID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// MarkRead 标记会话已读
func (c *HTTPChannel) MarkRead(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/conversations/%s/read", url.PathEscape(conversationID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// do 发起请求并归类错误
func (c *HTTPChannel) do(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// 传输层失败归类为网络错误，由调用方决定降级或重试
		return errorx.NewError(ErrTypeRemoteNetwork, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errorx.NewError(ErrTypeRemoteAuth)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if c.logger != nil {
			c.logger.ErrorKV("远端API返回错误", "method", method, "path", path, "status", resp.StatusCode)
		}
		return errorx.NewError(ErrTypeRemoteAPI, resp.StatusCode, string(data))
	}

	if respBody == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorx.NewError(ErrTypeRemoteNetwork, err.Error())
	}
	return json.Unmarshal(data, respBody)
}

// toMessage 转换为消息模型
// 远端列表默认视为已送达，本地已有更高状态时由调用方合并保留
func (p *messagePayload) toMessage() *models.Message {
	status := models.MessageStatus(p.Status)
	if !status.IsValid() {
		status = models.MessageStatusDelivered
	}
	return &models.Message{
		ID:             p.MessageID,
		ConversationID: p.ConversationID,
		Content:        p.Content,
		SenderID:       p.SenderID,
		Timestamp:      p.Timestamp,
		Status:         status,
		Media:          p.Media,
	}
}

// IsNetworkError 判断是否为远端网络错误
func IsNetworkError(err error) bool {
	if errxErr, ok := err.(interface{ GetType() errorx.ErrorType }); ok {
		return errxErr.GetType() == ErrTypeRemoteNetwork
	}
	return false
}

// IsAuthError 判断是否为远端认证错误
func IsAuthError(err error) bool {
	if errxErr, ok := err.(interface{ GetType() errorx.ErrorType }); ok {
		return errxErr.GetType() == ErrTypeRemoteAuth
	}
	return false
}
