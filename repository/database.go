/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-06-21 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-08-24 09:12:45
 * @FilePath: \go-chatsync\repository\database.go
 * @Description: 数据库连接辅助
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package repository

import (
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenMySQL 打开 MySQL 连接并自动迁移消息表
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MessageRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite 打开 SQLite 连接并自动迁移消息表
// path 传 ":memory:" 可用于测试
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MessageRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
