package handlers

import (
	"blog-backend/app/server/jwt"
	"blog-backend/app/server/models"
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	e   *echo.Echo
	app *App
	db  *gorm.DB
	jwt *jwt.JWT
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// 内存 sqlite ，单连接避免每个连接各开一个独立的内存库
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	j, err := jwt.New("test-secret")
	require.NoError(t, err)

	app := NewApp(zap.NewNop(), db, rdb, j)
	e := echo.New()
	RegisterRoutes(e, app)

	return &testEnv{e: e, app: app, db: db, jwt: j}
}

// createUser 直接入库，密码字段不参与非登录用例
func (env *testEnv) createUser(t *testing.T, email, name string, isAdmin bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:    email,
		Name:     name,
		IsAdmin:  isAdmin,
		Password: "unused",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Description: name + " posts"}
	require.NoError(t, env.db.Create(category).Error)
	return category
}

func (env *testEnv) createPost(t *testing.T, author *models.User, category *models.Category, title string, published bool) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:      title,
		Content:    "content of " + title,
		Published:  published,
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}
	require.NoError(t, env.db.Create(post).Error)
	return post
}

func (env *testEnv) createComment(t *testing.T, post *models.Post, author *models.User, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: content, PostID: post.ID}
	if author != nil {
		comment.AuthorID = &author.ID
	} else {
		comment.AuthorName = "Anonymous"
	}
	require.NoError(t, env.db.Create(comment).Error)
	return comment
}

func (env *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := env.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		IsAdmin: user.IsAdmin,
		Expires: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

func (env *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}
