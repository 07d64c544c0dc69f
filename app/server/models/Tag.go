package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model

	// 标签名全局唯一，唯一索引同时兜底并发下的 connect-or-create ，
	// 匹配是大小写敏感的（ "Go" 和 "go" 是两个标签）
	Name string `gorm:"column:name;uniqueIndex"`
}
