/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-18 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-25 10:14:29
 * @FilePath: \go-chatsync\chatsync.go
 * @Description: 消息同步引擎 - 本地缓存优先 + 远端API + 实时通道
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package chatsync

import (
	"sync"
	"sync/atomic"

	"github.com/kamalyes/go-toolbox/pkg/idgen"

	"github.com/kamalyes/go-chatsync/models"
	"github.com/kamalyes/go-chatsync/remote"
	"github.com/kamalyes/go-chatsync/repository"
)

// Engine 消息同步引擎
// 职责：
//  1. 乐观写入：消息先落本地（pending）再走远端，UI 立即可见
//  2. 权威合并：远端响应/推送到达后以服务端ID与状态为准，状态只进不退
//  3. 缓存优先读取：本地新鲜则不碰网络，远端失败静默回退本地
type Engine struct {
	Config    *Config
	Logger    ChatLogger
	Store     repository.MessageRepository
	Remote    remote.Channel
	Transport *Transport

	idGen models.IDGenerator

	subscribers map[string][]*ConversationSubscription
	subMu       sync.RWMutex

	onTyping      atomic.Value // func(*models.TypingPayload)
	onServerError atomic.Value // func(*models.ErrorPayload)

	closed int32
}

// NewEngine 创建消息同步引擎
// 参数:
//   - config: 配置，nil 使用默认配置
//   - store: 本地消息存储
//   - remoteChannel: 远端消息通道
//   - transport: 实时通道，nil 表示纯拉取模式（无推送）
//   - log: 日志记录器，nil 使用默认日志器
func NewEngine(config *Config, store repository.MessageRepository, remoteChannel remote.Channel, transport *Transport, log ChatLogger) *Engine {
	if config == nil {
		config = NewDefaultConfig()
	}
	if log == nil {
		log = DefaultLogger
	}
	e := &Engine{
		Config:      config,
		Logger:      log,
		Store:       store,
		Remote:      remoteChannel,
		Transport:   transport,
		idGen:       idgen.NewIDGenerator(idgen.GeneratorTypeNanoID),
		subscribers: make(map[string][]*ConversationSubscription),
	}
	if transport != nil {
		transport.OnEvent(e.handleEvent)
	}
	return e
}

// WithIDGenerator 设置ID生成器并返回当前引擎
func (e *Engine) WithIDGenerator(gen models.IDGenerator) *Engine {
	e.idGen = gen
	return e
}

// OnTyping 设置输入状态回调
func (e *Engine) OnTyping(f func(*models.TypingPayload)) {
	e.onTyping.Store(f)
}

// OnServerError 设置服务端错误回调
func (e *Engine) OnServerError(f func(*models.ErrorPayload)) {
	e.onServerError.Store(f)
}

// Start 启动引擎并建立实时通道连接
func (e *Engine) Start() error {
	if atomic.LoadInt32(&e.closed) == 1 {
		return ErrEngineClosed
	}
	if e.Transport == nil {
		return nil
	}
	return e.Transport.Connect()
}

// Closed 返回引擎是否已关闭
func (e *Engine) Closed() bool {
	return atomic.LoadInt32(&e.closed) == 1
}

// Close 关闭引擎与实时通道，注销全部订阅
func (e *Engine) Close() {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return
	}
	if e.Transport != nil {
		e.Transport.Close()
	}
	e.subMu.Lock()
	for _, subs := range e.subscribers {
		for _, sub := range subs {
			sub.detach()
		}
	}
	e.subscribers = make(map[string][]*ConversationSubscription)
	e.subMu.Unlock()
	e.Logger.InfoKV("同步引擎已关闭")
}
