/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 16:52:09
 * @FilePath: \go-chatsync\connection_test.go
 * @Description: 实时通道测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-toolbox/pkg/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalyes/go-chatsync/models"
)

// ============================================================================
// 测试服务器
// ============================================================================

// testWSServer 收集入站帧的WebSocket测试服务器
type testWSServer struct {
	server   *httptest.Server
	upgrader websocket.Upgrader
	mu       sync.Mutex
	frames   []*models.Frame
}

func newTestWSServer(t *testing.T) *testWSServer {
	s := &testWSServer{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		go func() {
			defer conn.Close()
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var frame models.Frame
				if err := json.Unmarshal(data, &frame); err != nil {
					continue
				}
				s.mu.Lock()
				s.frames = append(s.frames, &frame)
				s.mu.Unlock()
			}
		}()
	}))
	t.Cleanup(s.server.Close)
	return s
}

// URL 返回 ws:// 地址
func (s *testWSServer) URL() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

// receivedTypes 返回已收到的帧类型序列
func (s *testWSServer) receivedTypes() []models.FrameType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]models.FrameType, 0, len(s.frames))
	for _, f := range s.frames {
		types = append(types, f.Type)
	}
	return types
}

// waitFrames 等待收到至少 n 帧
func (s *testWSServer) waitFrames(t *testing.T, n int) {
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.frames) >= n
	}, 3*time.Second, 10*time.Millisecond)
}

// ============================================================================
// 连接生命周期测试
// ============================================================================

// TestTransport_SendRequiresOpen 测试非OPEN状态丢弃出站帧
func TestTransport_SendRequiresOpen(t *testing.T) {
	transport := NewTransport(NewDefaultConfig().WithTransportURL("ws://127.0.0.1:1/ws"), NewNoOpLogger())

	err := transport.Send(models.NewTypingFrame("conv-1", "user-1", true))
	assert.Equal(t, ErrTransportNotOpen, err, "未连接时直接丢弃")

	transport.Close()
	err = transport.Send(models.NewTypingFrame("conv-1", "user-1", true))
	assert.Equal(t, ErrTransportClosed, err, "关闭后拒绝一切帧")
}

// TestTransport_JoinOrderPreserved 测试加入顺序保持
func TestTransport_JoinOrderPreserved(t *testing.T) {
	transport := NewTransport(NewDefaultConfig().WithTransportURL("ws://127.0.0.1:1/ws"), NewNoOpLogger())
	defer transport.Close()

	// 未连接时加入仍被记录
	require.NoError(t, transport.JoinConversation("conv-b"))
	require.NoError(t, transport.JoinConversation("conv-a"))
	require.NoError(t, transport.JoinConversation("conv-b")) // 重复加入去重
	require.NoError(t, transport.JoinConversation("conv-c"))

	assert.Equal(t, []string{"conv-b", "conv-a", "conv-c"}, transport.Joined())

	require.NoError(t, transport.LeaveConversation("conv-a"))
	assert.Equal(t, []string{"conv-b", "conv-c"}, transport.Joined())
}

// TestTransport_ConnectAndResubscribe 测试连接建立后按原顺序重订阅
func TestTransport_ConnectAndResubscribe(t *testing.T) {
	server := newTestWSServer(t)
	config := NewDefaultConfig().WithTransportURL(server.URL())
	transport := NewTransport(config, NewNoOpLogger())
	defer transport.Close()

	require.NoError(t, transport.JoinConversation("conv-1"))
	require.NoError(t, transport.JoinConversation("conv-2"))

	require.NoError(t, transport.Connect())
	require.Eventually(t, func() bool {
		return transport.Status() == models.ConnectionStatusOpen
	}, 3*time.Second, 10*time.Millisecond)

	server.waitFrames(t, 2)
	types := server.receivedTypes()
	assert.Equal(t, models.FrameTypeJoinConversation, types[0])
	assert.Equal(t, models.FrameTypeJoinConversation, types[1])

	// OPEN 后可以正常发帧
	require.NoError(t, transport.SendTyping("conv-1", "user-1", true))
	server.waitFrames(t, 3)
	types = server.receivedTypes()
	assert.Equal(t, models.FrameTypeTypingIndicator, types[2])
}

// TestTransport_EventDispatch 测试入站事件分发
func TestTransport_EventDispatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		payload, _ := json.Marshal(&models.ChatMessagePayload{
			MessageID:      "m-1",
			ConversationID: "conv-1",
			Content:        "hi",
			SenderID:       "peer",
			Timestamp:      100,
		})
		data, _ := json.Marshal(&models.Event{
			Type:    models.EventTypeChatMessage,
			Payload: payload,
		})
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

		// 保持连接直到客户端关闭
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	config := NewDefaultConfig().WithTransportURL("ws" + strings.TrimPrefix(server.URL, "http"))
	transport := NewTransport(config, NewNoOpLogger())
	defer transport.Close()

	events := make(chan *models.Event, 1)
	transport.OnEvent(func(event *models.Event) {
		select {
		case events <- event:
		default:
		}
	})

	require.NoError(t, transport.Connect())

	select {
	case event := <-events:
		assert.Equal(t, models.EventTypeChatMessage, event.Type)
		var payload models.ChatMessagePayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "m-1", payload.MessageID)
	case <-time.After(3 * time.Second):
		t.Fatal("未收到入站事件")
	}
}

// TestTransport_InitialStatusConnecting 测试初始状态
func TestTransport_InitialStatusConnecting(t *testing.T) {
	transport := NewTransport(NewDefaultConfig().WithTransportURL("ws://127.0.0.1:1/ws"), NewNoOpLogger())
	defer transport.Close()

	assert.Equal(t, models.ConnectionStatusConnecting, transport.Status())
}

// TestTransport_ReconnectExhaustion 测试重连耗尽进入failed终态与手动重连重置预算
func TestTransport_ReconnectExhaustion(t *testing.T) {
	config := NewDefaultConfig().
		WithTransportURL("ws://127.0.0.1:1/ws").
		WithHandshakeTimeout(200 * time.Millisecond).
		WithReconnectMinDelay(time.Millisecond).
		WithReconnectMaxDelay(2 * time.Millisecond).
		WithMaxReconnectAttempts(2)
	transport := NewTransport(config, NewNoOpLogger())
	defer transport.Close()

	statusCh := make(chan models.ConnectionStatus, 32)
	transport.OnStatusChanged(func(status models.ConnectionStatus) {
		statusCh <- status
	})
	errCh := make(chan error, 8)
	transport.OnError(func(err error) {
		errCh <- err
	})

	waitStatus := func(want models.ConnectionStatus) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case status := <-statusCh:
				if status == want {
					return
				}
			case <-deadline:
				t.Fatalf("等待状态 %s 超时", want.String())
			}
		}
	}

	require.Error(t, transport.Connect(), "不可达地址握手失败")

	// 退避预算耗尽后进入failed终态并上报错误
	waitStatus(models.ConnectionStatusFailed)
	assert.True(t, transport.policy.Exhausted())
	select {
	case err := <-errCh:
		assert.Equal(t, ErrTypeReconnectExhausted, errType(err))
	case <-time.After(time.Second):
		t.Fatal("未收到重连耗尽错误")
	}

	// 手动重连重置预算，重新走完退避序列后再次failed
	transport.Reconnect()
	waitStatus(models.ConnectionStatusConnecting)
	waitStatus(models.ConnectionStatusFailed)
	select {
	case err := <-errCh:
		assert.Equal(t, ErrTypeReconnectExhausted, errType(err))
	case <-time.After(time.Second):
		t.Fatal("手动重连后未再次收到耗尽错误")
	}
}
