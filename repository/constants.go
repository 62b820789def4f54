/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-20 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-21 11:23:09
 * @FilePath: \go-chatsync\repository\constants.go
 * @Description: 仓库常量定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

const (
	// DefaultRedisKeyPrefix Redis key 默认前缀
	DefaultRedisKeyPrefix = "chatsync:"

	// DefaultQueryLimit 查询默认返回条数
	DefaultQueryLimit = 200

	// MaxQueryLimit 单次查询最大条数
	MaxQueryLimit = 10000
)
