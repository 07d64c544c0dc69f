package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	// 基础信息
	Email     string `gorm:"column:email;uniqueIndex"` // 邮箱，全局唯一，登录时使用
	Name      string `gorm:"column:name"`              // 显示名称
	Bio       string `gorm:"column:bio"`               // 个人简介，可以为空
	AvatarURL string `gorm:"column:avatar_url"`        // 头像地址，可以为空
	IsAdmin   bool   `gorm:"column:is_admin"`          // 是否为管理员：管理员可以管理所有内容，普通用户只能管理自己的

	// 登录与授权认证相关
	Password string `gorm:"column:password" json:"-"` // 密码，使用 argon2id 储存，不参与序列化
}
