package handlers

import (
	"blog-backend/app/server/models"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type postCreateRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Published  *bool    `json:"published"`
	CategoryId uint     `json:"categoryId"`
	Tags       []string `json:"tags"`
}

type postUpdateRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Published  *bool     `json:"published"`
	CategoryId *uint     `json:"categoryId"`
	Tags       *[]string `json:"tags"`
}

type postListFilter struct {
	search     string
	categoryID *uint
	authorID   *uint
	published  *bool
}

// postPreload 拉取文章及其关联（作者、分类、标签）
func (a *App) postPreload(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags")
}

func (a *App) PostCreate(c echo.Context) error {
	// 抓取 user 信息（认证），发文必须登录
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}
	authorID, _ := p.UserID()

	rctx := c.Request().Context()

	// 绑定请求体
	var req postCreateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Title == "" || req.Content == "" || req.CategoryId == 0 {
		return a.er(c, http.StatusBadRequest)
	}

	// 文章和标签关联必须一起落库
	var post models.Post
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		// 分类必须已存在，不存在按未找到处理
		var category models.Category
		if err := tx.First(&category, "id = ?", req.CategoryId).Error; err != nil {
			return fmt.Errorf("resolve category: %w", err)
		}

		// 解析标签（ connect-or-create ）
		tags, err := reconcileTags(rctx, tx, req.Tags)
		if err != nil {
			return err
		}

		post = models.Post{
			Title:      req.Title,
			Content:    req.Content,
			AuthorID:   authorID,
			CategoryID: category.ID,
			Tags:       tags,
		}
		if req.Published != nil {
			post.Published = *req.Published
		}

		return tx.Create(&post).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to create post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 带上关联重新拉取，返回完整形状
	var created models.Post
	if err := a.postPreload(rctx).First(&created, "id = ?", post.ID).Error; err != nil {
		a.l.Error("failed to get created post", zap.Uint("id", post.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, postInfo(&created, false))
}

func (a *App) listPosts(ctx context.Context, filter postListFilter, includeUnpublished bool) ([]PostInfo, error) {
	query := a.postPreload(ctx).Model(&models.Post{}).Order("created_at DESC")

	// 标题、正文的大小写不敏感子串检索，两个字段取并集
	if filter.search != "" {
		like := "%" + strings.ToLower(filter.search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(content) LIKE ?)", like, like)
	}

	// 显式指定了 published 时按指定的来，否则非特权视角只看已发布的
	if filter.published != nil {
		query = query.Where("published = ?", *filter.published)
	} else if !includeUnpublished {
		query = query.Where("published = ?", true)
	}

	if filter.categoryID != nil {
		query = query.Where("category_id = ?", *filter.categoryID)
	}
	if filter.authorID != nil {
		query = query.Where("author_id = ?", *filter.authorID)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}

	// 统计评论数
	commentCounts := make(map[uint]int64, len(posts))
	if len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}

		var counts []struct {
			PostID uint
			Count  int64
		}
		if err := a.db.WithContext(ctx).Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&counts).Error; err != nil {
			return nil, fmt.Errorf("count comments: %w", err)
		}
		for _, row := range counts {
			commentCounts[row.PostID] = row.Count
		}
	}

	resPosts := []PostInfo{}
	for i := range posts {
		info := postInfo(&posts[i], false)
		count := commentCounts[posts[i].ID]
		info.CommentCount = &count
		resPosts = append(resPosts, *info)
	}

	return resPosts, nil
}

func (a *App) PostList(c echo.Context) error {
	// 抓取 user 信息（认证可选），登录用户的列表包含未发布的文章
	p, err, statusCode := a.principal(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 解析过滤条件
	var filter postListFilter
	filter.search = c.QueryParam("search")
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return a.er(c, http.StatusBadRequest)
		}
		categoryID := uint(id)
		filter.categoryID = &categoryID
	}
	if v := c.QueryParam("authorId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return a.er(c, http.StatusBadRequest)
		}
		authorID := uint(id)
		filter.authorID = &authorID
	}
	if v := c.QueryParam("published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			return a.er(c, http.StatusBadRequest)
		}
		filter.published = &published
	}

	resPosts, err := a.listPosts(rctx, filter, p.IsAuthenticated())
	if err != nil {
		a.l.Error("failed to get post list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, resPosts)
}

func (a *App) PostAdminList(c echo.Context) error {
	// 抓取 user 信息（认证），管理员视角：全部文章，包含未发布的
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	resPosts, err := a.listPosts(rctx, postListFilter{}, true)
	if err != nil {
		a.l.Error("failed to get post list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, resPosts)
}

func (a *App) PostInfoGet(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证可选）
	p, err, statusCode := a.principal(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的文章，带评论（按时间倒序）
	var post models.Post
	if err := a.postPreload(rctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.Author").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 不可见和不存在返回完全一致，不泄露草稿的存在性
	if !p.CanReadPost(post.Published, post.AuthorID) {
		return a.er(c, http.StatusNotFound)
	}

	// 浏览量自增必须是存储层的单条原子语句，并发读取下不丢计数
	if err := a.db.WithContext(rctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		a.l.Error("failed to increment view count", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	post.ViewCount++

	res := postInfo(&post, true)
	resComments := make([]CommentInfo, 0, len(post.Comments))
	for i := range post.Comments {
		resComments = append(resComments, *commentInfo(&post.Comments[i]))
	}
	res.Comments = resComments

	return c.JSON(http.StatusOK, res)
}

func (a *App) PostInfoUpdate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证）
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req postUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的文章
	var post models.Post
	if err := a.db.WithContext(rctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 只有作者本人或管理员可以修改
	if !p.CanModify(&post.AuthorID) {
		return a.er(c, http.StatusForbidden)
	}

	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.Published != nil {
			updates["published"] = *req.Published
		}
		if req.CategoryId != nil {
			// 新分类必须已存在
			var category models.Category
			if err := tx.First(&category, "id = ?", *req.CategoryId).Error; err != nil {
				return fmt.Errorf("resolve category: %w", err)
			}
			updates["category_id"] = category.ID
		}

		if len(updates) > 0 {
			if err := tx.Model(&post).Updates(updates).Error; err != nil {
				return fmt.Errorf("update post: %w", err)
			}
		}

		// 给出了标签列表时做整组替换：提供的列表就是文章新的标签集合，
		// 不是增量合并，列表里没有的旧标签会被解除关联
		if req.Tags != nil {
			tags, err := reconcileTags(rctx, tx, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&post).Association("Tags").Replace(&tags); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
		}

		return nil
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to update post", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 带上关联重新拉取，返回完整形状
	var updated models.Post
	if err := a.postPreload(rctx).First(&updated, "id = ?", id).Error; err != nil {
		a.l.Error("failed to get updated post", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, postInfo(&updated, false))
}

func (a *App) PostDelete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证）
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的文章
	var post models.Post
	if err := a.db.WithContext(rctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 只有作者本人或管理员可以删除
	if !p.CanModify(&post.AuthorID) {
		return a.er(c, http.StatusForbidden)
	}

	// 连同评论和标签关联一起删除，不留下无主评论
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		return tx.Delete(&models.Post{}, id).Error
	}); err != nil {
		a.l.Error("failed to delete post", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
