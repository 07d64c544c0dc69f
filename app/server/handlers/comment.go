package handlers

import (
	"blog-backend/app/server/constants"
	"blog-backend/app/server/models"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commentCreateRequest struct {
	Content     string  `json:"content"`
	PostId      uint    `json:"postId"`
	AuthorName  *string `json:"authorName"`
	AuthorEmail *string `json:"authorEmail"`
}

type commentUpdateRequest struct {
	Content string `json:"content"`
}

func (a *App) CommentCreate(c echo.Context) error {
	// 抓取 user 信息（认证可选），匿名访客也可以评论
	p, err, statusCode := a.principal(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req commentCreateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Content == "" || req.PostId == 0 {
		return a.er(c, http.StatusBadRequest)
	}

	// 文章必须存在且已发布，两种失败对调用方不可区分
	var post models.Post
	if err := a.db.WithContext(rctx).Select("id", "published").First(&post, "id = ?", req.PostId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint("postId", req.PostId), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}
	if !post.Published {
		return a.er(c, http.StatusNotFound)
	}

	comment := models.Comment{
		Content: req.Content,
		PostID:  post.ID,
	}
	if userID, ok := p.UserID(); ok {
		// 登录用户：评论挂在用户上，请求里的自由署名忽略
		comment.AuthorID = &userID
	} else {
		// 匿名评论：没有署名时填充占位名
		comment.AuthorName = constants.AnonymousCommentAuthor
		if req.AuthorName != nil && *req.AuthorName != "" {
			comment.AuthorName = *req.AuthorName
		}
		if req.AuthorEmail != nil {
			comment.AuthorEmail = *req.AuthorEmail
		}
	}

	if err := a.db.WithContext(rctx).Create(&comment).Error; err != nil {
		a.l.Error("failed to create comment", zap.Uint("postId", req.PostId), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 登录用户的评论带上作者摘要
	if comment.AuthorID != nil {
		user, err := a.userByID(rctx, *comment.AuthorID)
		if err != nil {
			a.l.Error("failed to get comment author", zap.Uint("id", *comment.AuthorID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		comment.Author = user
	}

	return c.JSON(http.StatusCreated, commentInfo(&comment))
}

func (a *App) CommentListByPost(c echo.Context) error {
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	var comments []models.Comment
	if err := a.db.WithContext(rctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		a.l.Error("failed to get comment list", zap.Uint("postId", postID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resComments := []CommentInfo{}
	for i := range comments {
		resComments = append(resComments, *commentInfo(&comments[i]))
	}

	return c.JSON(http.StatusOK, resComments)
}

func (a *App) CommentInfoGet(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的评论
	var comment models.Comment
	if err := a.db.WithContext(rctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get comment", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, commentInfo(&comment))
}

func (a *App) CommentInfoUpdate(c echo.Context) error {
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
	var req commentUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Content == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的评论
	var comment models.Comment
	if err := a.db.WithContext(rctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get comment", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 只有作者本人或管理员可以修改，匿名评论没有可证明的作者，只有管理员能动
	if !p.CanModify(comment.AuthorID) {
		return a.er(c, http.StatusForbidden)
	}

	// 更新评论内容
	if err := a.db.WithContext(rctx).Model(&comment).Update("content", req.Content).Error; err != nil {
		a.l.Error("failed to update comment", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, commentInfo(&comment))
}

func (a *App) CommentDelete(c echo.Context) error {
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

	// 从数据库中获得指定的评论
	var comment models.Comment
	if err := a.db.WithContext(rctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get comment", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 所有权规则与更新一致
	if !p.CanModify(comment.AuthorID) {
		return a.er(c, http.StatusForbidden)
	}

	// 删除评论
	if err := a.db.WithContext(rctx).Delete(&models.Comment{}, id).Error; err != nil {
		a.l.Error("failed to delete comment", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}

// CommentAdminDelete 管理员专用的删除通道，跳过所有权检查
func (a *App) CommentAdminDelete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证）
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 评论必须存在
	var comment models.Comment
	if err := a.db.WithContext(rctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get comment", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 删除评论
	if err := a.db.WithContext(rctx).Delete(&models.Comment{}, id).Error; err != nil {
		a.l.Error("failed to delete comment", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
