package handlers

import (
	"blog-backend/app/server/constants"
	"blog-backend/app/server/jwt"
	"blog-backend/app/server/models"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authRegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	Bio       *string `json:"bio"`
	AvatarUrl *string `json:"avatarUrl"`
}

type authLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokenResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

func (a *App) signTokenResponse(user *models.User) (*AuthTokenResponse, error) {
	expires := time.Now().Add(constants.AuthTokenDuration)
	token, err := a.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		IsAdmin: user.IsAdmin,
		Expires: expires.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &AuthTokenResponse{
		Token: token,
		User:  *userInfo(user),
	}, nil
}

func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req authRegisterRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 邮箱已被占用时返回冲突，唯一索引兜底并发下的重复注册
	var existing models.User
	if err := a.db.WithContext(rctx).First(&existing, "email = ?", req.Email).Error; err == nil {
		return a.er(c, http.StatusConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to check existing email", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 处理密码
	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建用户
	user := models.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: passwordHash,
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarUrl != nil {
		user.AvatarURL = *req.AvatarUrl
	}

	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		a.l.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		return a.er(c, dbErrStatus(err))
	}

	// 注册即登录，直接签出 JWT
	res, err := a.signTokenResponse(&user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, res)
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req authLoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Email == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "email = ?", req.Email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusUnauthorized)
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 提取密码 hash 并进行校验
	if match, _, err := argon2id.CheckHash(req.Password, user.Password); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		// 密码不一致
		return a.er(c, http.StatusUnauthorized)
	}

	// 签出 JWT
	res, err := a.signTokenResponse(&user)
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, res)
}
