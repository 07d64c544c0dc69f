package handlers

import (
	"blog-backend/app/server/models"
	"time"
)

// 对外资源形状，字段沿用 camelCase 命名，密码永远不出现在任何返回里

type UserInfo struct {
	Id        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	AvatarUrl string    `json:"avatarUrl,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userInfo(u *models.User) *UserInfo {
	return &UserInfo{
		Id:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarUrl: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthorSummary 是挂在文章、评论上的作者摘要， Email / Bio 只在部分场景携带
type AuthorSummary struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

type CategoryInfo struct {
	Id          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func categoryInfo(cat *models.Category) *CategoryInfo {
	return &CategoryInfo{
		Id:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
	}
}

type TagInfo struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

func tagInfos(tags []models.Tag) []TagInfo {
	res := make([]TagInfo, 0, len(tags))
	for _, tag := range tags {
		res = append(res, TagInfo{Id: tag.ID, Name: tag.Name})
	}
	return res
}

type CommentInfo struct {
	Id          uint           `json:"id"`
	Content     string         `json:"content"`
	Author      *AuthorSummary `json:"author,omitempty"`      // 登录用户的评论
	AuthorName  string         `json:"authorName,omitempty"`  // 匿名评论署名
	AuthorEmail string         `json:"authorEmail,omitempty"` // 匿名评论邮箱
	CreatedAt   time.Time      `json:"createdAt"`
}

func commentInfo(comment *models.Comment) *CommentInfo {
	res := &CommentInfo{
		Id:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if comment.AuthorID != nil && comment.Author != nil {
		res.Author = &AuthorSummary{
			Id:   comment.Author.ID,
			Name: comment.Author.Name,
		}
	} else {
		res.AuthorName = comment.AuthorName
		res.AuthorEmail = comment.AuthorEmail
	}
	return res
}

type PostInfo struct {
	Id           uint          `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Published    bool          `json:"published"`
	ViewCount    uint          `json:"viewCount"`
	Author       AuthorSummary `json:"author"`
	Category     CategoryInfo  `json:"category"`
	Tags         []TagInfo     `json:"tags"`
	CommentCount *int64        `json:"commentCount,omitempty"` // 列表时携带
	Comments     []CommentInfo `json:"comments,omitempty"`     // 单篇详情时携带
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func postInfo(post *models.Post, withAuthorBio bool) *PostInfo {
	author := AuthorSummary{
		Id:    post.Author.ID,
		Name:  post.Author.Name,
		Email: post.Author.Email,
	}
	if withAuthorBio {
		author.Bio = post.Author.Bio
	}

	return &PostInfo{
		Id:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Published: post.Published,
		ViewCount: post.ViewCount,
		Author:    author,
		Category:  *categoryInfo(&post.Category),
		Tags:      tagInfos(post.Tags),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
