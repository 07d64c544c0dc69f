package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	Content string `gorm:"column:content"`       // 评论内容
	PostID  uint   `gorm:"column:post_id;index"` // 所属文章 ID

	// 两种署名模式二选一：已登录用户记 AuthorID ，匿名评论记 AuthorName / AuthorEmail
	AuthorID    *uint  `gorm:"column:author_id;index"` // 作者 ID ， NULL 表示匿名评论
	AuthorName  string `gorm:"column:author_name"`     // 匿名署名，缺省填充占位名
	AuthorEmail string `gorm:"column:author_email"`    // 匿名邮箱，可以为空

	// 连接模型时使用
	Author *User `gorm:"foreignKey:AuthorID"` // 作者（匿名评论时为 nil ）
}
