package models

import "gorm.io/gorm"

type Post struct {
	gorm.Model

	// 文章基础信息
	Title     string `gorm:"column:title"`                   // 标题
	Content   string `gorm:"column:content"`                 // 正文
	Published bool   `gorm:"column:published;default:false"` // 是否已发布：未发布的只有作者和管理员可见
	ViewCount uint   `gorm:"column:view_count;default:0"`    // 浏览量，只增不减，由存储层原子自增

	// 归属关系
	AuthorID   uint `gorm:"column:author_id;index"`   // 作者 ID ，用于所有权判断
	CategoryID uint `gorm:"column:category_id;index"` // 分类 ID ，必须指向已存在的分类

	// 连接模型时使用
	Author   User     `gorm:"foreignKey:AuthorID"`   // 作者
	Category Category `gorm:"foreignKey:CategoryID"` // 分类
	Tags     []Tag    `gorm:"many2many:post_tags"`   // 标签集合
	Comments []Comment
}
