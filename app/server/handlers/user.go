package handlers

import (
	"blog-backend/app/server/models"
	"errors"
	"net/http"

	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userInfoUpdateRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarUrl *string `json:"avatarUrl"`
}

type userPasswordUpdateRequest struct {
	Password *string `json:"password"`
}

type userRoleUpdateRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

// 仅收集请求中出现的字段，空字符串也要能写入
func (a *App) userMapFields(req *userInfoUpdateRequest, user *models.User) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Name != nil {
		user.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		fields["bio"] = *req.Bio
	}
	if req.AvatarUrl != nil {
		user.AvatarURL = *req.AvatarUrl
		fields["avatar_url"] = *req.AvatarUrl
	}
	return fields
}

func (a *App) UserList(c echo.Context) error {
	// 抓取 user 信息（认证）
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var users []models.User
	if err := a.db.WithContext(rctx).Model(&models.User{}).Order("id ASC").Find(&users).Error; err != nil {
		a.l.Error("failed to get user list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resUsers := []UserInfo{}
	for i := range users {
		resUsers = append(resUsers, *userInfo(&users[i]))
	}

	return c.JSON(http.StatusOK, resUsers)
}

func (a *App) UserInfoGet(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证），非管理员只能查看自己的资料
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}
	if !p.CanModify(&id) {
		return a.er(c, http.StatusForbidden)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, userInfo(&user))
}

func (a *App) UserInfoUpdate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证），非管理员只能更新自己的资料
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}
	if !p.CanModify(&id) {
		return a.er(c, http.StatusForbidden)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req userInfoUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	fields := a.userMapFields(&req, &user)

	// 更新用户信息
	if len(fields) > 0 {
		if err := a.db.WithContext(rctx).Model(&user).Updates(fields).Error; err != nil {
			a.l.Error("failed to update user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 清理认证缓存
	a.userClearAuthCache(rctx, id)

	return c.JSON(http.StatusOK, userInfo(&user))
}

func (a *App) UserPasswordUpdate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证），非管理员只能更新自己的密码
	p, err, statusCode := a.authUser(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}
	if !p.CanModify(&id) {
		return a.er(c, http.StatusForbidden)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req userPasswordUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Password == nil || *req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	newPasswordHash, err := argon2id.CreateHash(*req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 更新用户信息
	if err := a.db.WithContext(rctx).Model(&user).Update("password", newPasswordHash).Error; err != nil {
		a.l.Error("failed to update user", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 清理认证缓存
	a.userClearAuthCache(rctx, id)

	return c.NoContent(http.StatusOK)
}

func (a *App) UserRoleUpdate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证），只有管理员可以调整权限
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req userRoleUpdateRequest
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.IsAdmin == nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的用户
	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 更新用户信息
	if err := a.db.WithContext(rctx).Model(&user).Update("is_admin", *req.IsAdmin).Error; err != nil {
		a.l.Error("failed to update user", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 清理认证缓存
	a.userClearAuthCache(rctx, id)

	return c.JSON(http.StatusOK, userInfo(&user))
}

func (a *App) UserDelete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证），只有管理员可以删除用户
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 还持有文章或评论的用户不能删除，避免产生无主内容
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}

		var postCount int64
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Count(&postCount).Error; err != nil {
			return err
		}
		var commentCount int64
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", id).Count(&commentCount).Error; err != nil {
			return err
		}
		if postCount > 0 || commentCount > 0 {
			return gorm.ErrForeignKeyViolated
		}

		return tx.Delete(&models.User{}, id).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return a.er(c, http.StatusConflict)
		}
		a.l.Error("failed to delete user", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 清理认证缓存
	a.userClearAuthCache(rctx, id)

	return c.NoContent(http.StatusOK)
}
