package handlers

import (
	"blog-backend/app/server/constants"
	"blog-backend/app/server/models"
	"blog-backend/app/server/policy"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// principal 解析请求主体：没有携带凭证视为匿名访客；携带了凭证但无效则拒绝。
// 管理员标记以数据库（含缓存）里的记录为准，不信任 token 里的声明
func (a *App) principal(c echo.Context) (policy.Principal, error, int) {
	// 提取 token
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return policy.Anonymous(), nil, http.StatusOK
	}

	splits := strings.Split(authHeader, " ")
	if len(splits) != 2 {
		return policy.Anonymous(), fmt.Errorf("invalid auth header: %s", authHeader), http.StatusUnauthorized
	}

	if strings.ToLower(splits[0]) != "bearer" {
		return policy.Anonymous(), fmt.Errorf("unknown auth method: %s", splits[0]), http.StatusUnauthorized
	}

	// 验证 token
	jwtUser, err := a.jwt.ParseUser(splits[1])
	if err != nil {
		// 无效的 token
		return policy.Anonymous(), fmt.Errorf("failed to parse token: %w", err), http.StatusUnauthorized
	}

	// 拉取用户记录，用户已被删除的 token 不能继续使用
	user, err := a.userByID(c.Request().Context(), jwtUser.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Anonymous(), fmt.Errorf("token user no longer exists"), http.StatusUnauthorized
		}
		return policy.Anonymous(), fmt.Errorf("failed to get token user: %w", err), http.StatusInternalServerError
	}

	if user.IsAdmin {
		return policy.Admin(user.ID), nil, http.StatusOK
	}
	return policy.User(user.ID), nil, http.StatusOK
}

// authUser 在 principal 的基础上要求必须是登录用户
func (a *App) authUser(c echo.Context) (policy.Principal, error, int) {
	p, err, statusCode := a.principal(c)
	if err != nil {
		return p, err, statusCode
	}
	if !p.IsAuthenticated() {
		return p, fmt.Errorf("missing auth token"), http.StatusUnauthorized
	}
	return p, nil, http.StatusOK
}

// authAdmin 在 authUser 的基础上要求管理员权限
func (a *App) authAdmin(c echo.Context) (policy.Principal, error, int) {
	p, err, statusCode := a.authUser(c)
	if err != nil {
		return p, err, statusCode
	}
	if !p.IsAdmin() {
		return p, fmt.Errorf("requires admin role"), http.StatusForbidden
	}
	return p, nil, http.StatusOK
}

// userByID 先查缓存再查数据库，命中数据库后回填缓存
func (a *App) userByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	// 查询缓存
	cacheKey := fmt.Sprintf(constants.CacheKeyUserInfo, id)
	if cacheBytes, err := a.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query cache for user info", zap.Uint("id", id), zap.Error(err))
		}
	} else if err = json.Unmarshal(cacheBytes, &user); err != nil {
		a.l.Error("failed to unmarshal user info", zap.Uint("id", id), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
		// 可能是无效的缓存，清理掉
		a.rdb.Del(ctx, cacheKey)
	} else {
		// 成功拉取到并格式化
		return &user, nil
	}

	// 查询数据库
	if err := a.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}

	// 格式化并加入缓存，方便下一次查询（ Password 字段不参与序列化，不会进缓存）
	if cacheBytes, err := json.Marshal(&user); err != nil {
		a.l.Error("failed to marshal user info", zap.Uint("id", id), zap.Error(err))
	} else {
		a.rdb.Set(ctx, cacheKey, cacheBytes, constants.CacheExpireUserInfo)
	}

	return &user, nil
}

// userClearAuthCache 用户信息有变更（资料、密码、权限、删除）时清理缓存
func (a *App) userClearAuthCache(ctx context.Context, id uint) {
	a.rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyUserInfo, id))
}
