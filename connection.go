/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 09:21:44
 * @FilePath: \go-chatsync\connection.go
 * @Description: 实时通道连接管理逻辑
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/json"

	"github.com/kamalyes/go-chatsync/models"
)

// Transport 实时通道
// 生命周期：connecting（初始）-> open -> (closing -> closed | closed -> 重连)
// 重连由 ReconnectPolicy 控制，次数耗尽进入 failed 终态；
// 非 OPEN 状态下的出站帧直接丢弃并返回错误，绝不排队
type Transport struct {
	Config    *Config
	WebSocket *WebSocket
	Logger    ChatLogger

	policy *ReconnectPolicy

	status   models.ConnectionStatus
	statusMu sync.RWMutex

	// joined 按加入顺序保存会话ID，重连成功后按原顺序重新订阅
	joined   []string
	joinedMu sync.Mutex

	closed       int32 // 主动关闭标记
	reconnecting int32 // 重连单飞标记

	onEvent         atomic.Value // func(*models.Event)
	onStatusChanged atomic.Value // func(models.ConnectionStatus)
	onError         atomic.Value // func(error)
}

// NewTransport 创建实时通道
func NewTransport(config *Config, log ChatLogger) *Transport {
	if config == nil {
		config = NewDefaultConfig()
	}
	if log == nil {
		log = DefaultLogger
	}
	dialer := &websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
	}
	ws := NewWebSocket(config.TransportURL).
		WithDialer(dialer).
		WithSendBufferSize(config.SendBufferSize)
	// 初始即为 connecting，Connect 之前的观察窗口不呈现 closed
	return &Transport{
		Config:    config,
		WebSocket: ws,
		Logger:    log,
		policy:    NewReconnectPolicy(config),
		status:    models.ConnectionStatusConnecting,
	}
}

// OnEvent 设置入站事件回调
func (t *Transport) OnEvent(f func(*models.Event)) {
	t.onEvent.Store(f)
}

// OnStatusChanged 设置连接状态变更回调
func (t *Transport) OnStatusChanged(f func(models.ConnectionStatus)) {
	t.onStatusChanged.Store(f)
}

// OnError 设置错误回调
func (t *Transport) OnError(f func(error)) {
	t.onError.Store(f)
}

// Status 返回当前连接状态
func (t *Transport) Status() models.ConnectionStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

// setStatus 变更连接状态并触发回调
func (t *Transport) setStatus(status models.ConnectionStatus) {
	t.statusMu.Lock()
	changed := t.status != status
	t.status = status
	t.statusMu.Unlock()
	if changed {
		t.Logger.InfoKV("连接状态变更", "status", status.String())
		if f := t.onStatusChanged.Load(); f != nil {
			f.(func(models.ConnectionStatus))(status)
		}
	}
}

// emitError 触发错误回调
func (t *Transport) emitError(err error) {
	if f := t.onError.Load(); f != nil {
		f.(func(error))(err)
	}
}

// Connect 发起连接
// 首次拨号失败时进入重连流程，与断线后的退避序列一致
func (t *Transport) Connect() error {
	if atomic.LoadInt32(&t.closed) == 1 {
		return ErrTransportClosed
	}
	t.setStatus(models.ConnectionStatusConnecting)
	conn, resp, err := t.WebSocket.Dialer.Dial(t.WebSocket.Url, t.WebSocket.RequestHeader)
	t.WebSocket.HttpResponse = resp
	if err != nil {
		t.Logger.ErrorKV("连接失败", "url", t.WebSocket.Url, "error", err)
		t.setStatus(models.ConnectionStatusClosed)
		go t.reconnectLoop()
		return errorx.NewError(ErrTypeHandshakeFailed, err.Error())
	}
	t.finishOpen(conn)
	return nil
}

// finishOpen 连接建立后的统一收尾
func (t *Transport) finishOpen(conn *websocket.Conn) {
	t.WebSocket.connMu.Lock()
	t.WebSocket.Conn = conn
	t.WebSocket.connMu.Unlock()

	conn.SetReadLimit(t.Config.MaxMessageSize)
	t.WebSocket.resetSendChan(t.Config.SendBufferSize)
	t.policy.Reset()
	t.setStatus(models.ConnectionStatusOpen)

	// 启动读写协程
	go t.readFrames(conn)
	go t.writeFrames(conn)

	// 按原加入顺序重新订阅，先于任何其他出站帧入队
	t.joinedMu.Lock()
	joined := make([]string, len(t.joined))
	copy(joined, t.joined)
	t.joinedMu.Unlock()
	for _, conversationID := range joined {
		if err := t.Send(models.NewJoinFrame(conversationID)); err != nil {
			t.Logger.ErrorKV("重新订阅失败", "conversation_id", conversationID, "error", err)
		}
	}
}

// readFrames 读消息协程
func (t *Transport) readFrames(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.handleDisconnect(err)
			return
		}
		var event models.Event
		if err := json.Unmarshal(message, &event); err != nil {
			t.Logger.ErrorKV("入站事件解析失败", "error", err)
			t.emitError(errorx.NewError(ErrTypeInvalidEventPayload, "unknown"))
			continue
		}
		if f := t.onEvent.Load(); f != nil {
			f.(func(*models.Event))(&event)
		}
	}
}

// writeFrames 写消息协程
func (t *Transport) writeFrames(conn *websocket.Conn) {
	t.WebSocket.sendChanMu.RLock()
	sendChan := t.WebSocket.sendChan
	t.WebSocket.sendChanMu.RUnlock()
	for frame := range sendChan {
		data, err := json.Marshal(frame)
		if err != nil {
			t.emitError(err)
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(t.Config.WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			t.emitError(err)
			continue
		}
	}
	// 通道关闭表示连接生命周期结束，补发关闭帧
	_ = conn.SetWriteDeadline(time.Now().Add(t.Config.WriteWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Send 发送出站帧
// 仅 OPEN 状态接受帧，其余状态直接丢弃并报错
func (t *Transport) Send(frame *models.Frame) error {
	if atomic.LoadInt32(&t.closed) == 1 {
		return ErrTransportClosed
	}
	if t.Status() != models.ConnectionStatusOpen {
		return ErrTransportNotOpen
	}
	t.WebSocket.sendChanMu.RLock()
	defer t.WebSocket.sendChanMu.RUnlock()
	select {
	case t.WebSocket.sendChan <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// JoinConversation 加入会话
// 会话ID始终记入订阅列表；连接未就绪时由重连成功后的重订阅补发
func (t *Transport) JoinConversation(conversationID string) error {
	t.joinedMu.Lock()
	exists := false
	for _, id := range t.joined {
		if id == conversationID {
			exists = true
			break
		}
	}
	if !exists {
		t.joined = append(t.joined, conversationID)
	}
	t.joinedMu.Unlock()

	if t.Status() != models.ConnectionStatusOpen {
		return nil
	}
	return t.Send(models.NewJoinFrame(conversationID))
}

// LeaveConversation 离开会话
func (t *Transport) LeaveConversation(conversationID string) error {
	t.joinedMu.Lock()
	for i, id := range t.joined {
		if id == conversationID {
			t.joined = append(t.joined[:i], t.joined[i+1:]...)
			break
		}
	}
	t.joinedMu.Unlock()

	if t.Status() != models.ConnectionStatusOpen {
		return nil
	}
	return t.Send(models.NewLeaveFrame(conversationID))
}

// Joined 返回当前订阅的会话ID（按加入顺序）
func (t *Transport) Joined() []string {
	t.joinedMu.Lock()
	defer t.joinedMu.Unlock()
	out := make([]string, len(t.joined))
	copy(out, t.joined)
	return out
}

// handleDisconnect 处理异常断线
func (t *Transport) handleDisconnect(err error) {
	if atomic.LoadInt32(&t.closed) == 1 {
		return
	}
	t.Logger.ErrorKV("连接断开", "error", err)
	t.cleanConn()
	t.setStatus(models.ConnectionStatusClosed)
	go t.reconnectLoop()
}

// reconnectLoop 退避重连，单飞保护避免并发重连
func (t *Transport) reconnectLoop() {
	if !atomic.CompareAndSwapInt32(&t.reconnecting, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&t.reconnecting, 0)

	for {
		if atomic.LoadInt32(&t.closed) == 1 {
			return
		}
		delay, ok := t.policy.NextDelay()
		if !ok {
			t.setStatus(models.ConnectionStatusFailed)
			t.emitError(errorx.NewError(ErrTypeReconnectExhausted, t.policy.Attempt()))
			return
		}
		t.Logger.InfoKV("准备重连", "attempt", t.policy.Attempt(), "delay", delay.String())
		time.Sleep(delay)
		if atomic.LoadInt32(&t.closed) == 1 {
			return
		}

		t.setStatus(models.ConnectionStatusConnecting)
		conn, resp, err := t.WebSocket.Dialer.Dial(t.WebSocket.Url, t.WebSocket.RequestHeader)
		t.WebSocket.HttpResponse = resp
		if err != nil {
			t.Logger.ErrorKV("重连失败", "attempt", t.policy.Attempt(), "error", err)
			t.setStatus(models.ConnectionStatusClosed)
			continue
		}
		t.finishOpen(conn)
		return
	}
}

// Reconnect 手动触发重连，退避计数归零
func (t *Transport) Reconnect() {
	if atomic.LoadInt32(&t.closed) == 1 {
		return
	}
	if t.Status() == models.ConnectionStatusOpen {
		return
	}
	t.policy.Reset()
	go t.reconnectLoop()
}

// cleanConn 关闭底层连接与出站通道
func (t *Transport) cleanConn() {
	t.WebSocket.connMu.Lock()
	if t.WebSocket.Conn != nil {
		_ = t.WebSocket.Conn.Close()
	}
	t.WebSocket.connMu.Unlock()
	t.WebSocket.closeSendChan()
}

// Close 主动关闭通道，不再重连
func (t *Transport) Close() {
	if !atomic.CompareAndSwapInt32(&t.closed, 0, 1) {
		return
	}
	t.setStatus(models.ConnectionStatusClosing)
	t.cleanConn()
	t.setStatus(models.ConnectionStatusClosed)
}
