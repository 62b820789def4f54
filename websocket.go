/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 16:40:12
 * @FilePath: \go-chatsync\websocket.go
 * @Description: WebSocket 结构体及其方法
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kamalyes/go-chatsync/models"
)

// WebSocket 结构体表示底层 WebSocket 连接
type WebSocket struct {
	Url           string             // 连接 URL
	Conn          *websocket.Conn    // WebSocket 连接
	Dialer        *websocket.Dialer  // WebSocket 拨号器
	RequestHeader http.Header        // 请求头
	HttpResponse  *http.Response     // 响应体
	connMu        *sync.RWMutex      // 连接锁
	sendChan      chan *models.Frame // 出站帧缓冲池
	sendChanMu    *sync.RWMutex      // 发送通道引用锁
	sendChanOnce  sync.Once          // 发送通道关闭保护
}

// NewWebSocket 创建一个新的 WebSocket 连接
func NewWebSocket(url string) *WebSocket {
	return &WebSocket{
		Url:           url,
		Dialer:        websocket.DefaultDialer,
		RequestHeader: http.Header{},
		connMu:        &sync.RWMutex{},
		sendChan:      make(chan *models.Frame, 256),
		sendChanMu:    &sync.RWMutex{},
	}
}

// WithDialer 设置自定义的 WebSocket 拨号器
func (ws *WebSocket) WithDialer(dialer *websocket.Dialer) *WebSocket {
	ws.Dialer = dialer
	return ws
}

// WithRequestHeader 设置请求头
func (ws *WebSocket) WithRequestHeader(header http.Header) *WebSocket {
	ws.RequestHeader = header
	return ws
}

// WithSendBufferSize 设置出站帧缓冲池大小
func (ws *WebSocket) WithSendBufferSize(size int) *WebSocket {
	if size > 0 {
		ws.sendChan = make(chan *models.Frame, size)
	}
	return ws
}

// WithCustomURL 设置自定义 URL
func (ws *WebSocket) WithCustomURL(url string) *WebSocket {
	ws.Url = url
	return ws
}

// resetSendChan 重连后重建出站通道
func (ws *WebSocket) resetSendChan(size int) {
	ws.sendChanMu.Lock()
	ws.sendChan = make(chan *models.Frame, size)
	ws.sendChanOnce = sync.Once{}
	ws.sendChanMu.Unlock()
}

// closeSendChan 原子关闭出站通道
func (ws *WebSocket) closeSendChan() {
	ws.sendChanMu.Lock()
	ws.sendChanOnce.Do(func() {
		close(ws.sendChan)
	})
	ws.sendChanMu.Unlock()
}
