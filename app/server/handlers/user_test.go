package handlers

import (
	"blog-backend/app/server/models"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserListAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, "admin@example.com", "Admin", true)
	user := env.createUser(t, "user@example.com", "User", false)

	rec := env.request(t, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/users", nil, env.token(t, user))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/users", nil, env.token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[[]UserInfo](t, rec)
	assert.Len(t, res, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserGetSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, "admin@example.com", "Admin", true)
	alice := env.createUser(t, "alice@example.com", "Alice", false)
	bob := env.createUser(t, "bob@example.com", "Bob", false)

	// 本人可以查看自己
	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), nil, env.token(t, alice))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[UserInfo](t, rec)
	assert.Equal(t, alice.ID, res.Id)

	// 其他人不行
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), nil, env.token(t, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 管理员可以查看任何人
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), nil, env.token(t, admin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserUpdateProfile(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice@example.com", "Alice", false)
	bob := env.createUser(t, "bob@example.com", "Bob", false)

	rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d", alice.ID), map[string]interface{}{
		"name": "Alice Cooper",
		"bio":  "painter",
	}, env.token(t, alice))
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[UserInfo](t, rec)
	assert.Equal(t, "Alice Cooper", res.Name)
	assert.Equal(t, "painter", res.Bio)

	// 显式置空简介也要落库
	rec = env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d", alice.ID), map[string]interface{}{
		"bio": "",
	}, env.token(t, alice))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, alice.ID).Error)
	assert.Equal(t, "", stored.Bio)
	assert.Equal(t, "Alice Cooper", stored.Name)

	// 其他人不能替自己改资料
	rec = env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d", alice.ID), map[string]interface{}{
		"name": "Hacked",
	}, env.token(t, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserPasswordUpdate(t *testing.T) {
	env := newTestEnv(t)

	// 走注册拿到真实的密码 hash
	rec := env.request(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email":    "carol@example.com",
		"password": "oldpass1",
		"name":     "Carol",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decodeBody[AuthTokenResponse](t, rec)

	rec = env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/password", registered.User.Id), map[string]interface{}{
		"password": "newpass1",
	}, registered.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	// 旧密码失效，新密码可用
	rec = env.request(t, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "carol@example.com",
		"password": "oldpass1",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "carol@example.com",
		"password": "newpass1",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserRoleUpdateAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, "admin@example.com", "Admin", true)
	alice := env.createUser(t, "alice@example.com", "Alice", false)
	bob := env.createUser(t, "bob@example.com", "Bob", false)

	rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/role", alice.ID), map[string]interface{}{
		"isAdmin": true,
	}, env.token(t, bob))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPatch, fmt.Sprintf("/api/users/%d/role", alice.ID), map[string]interface{}{
		"isAdmin": true,
	}, env.token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, env.db.First(&updated, alice.ID).Error)
	assert.True(t, updated.IsAdmin)
}

func TestUserDeleteRejectedWhileOwningContent(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, "admin@example.com", "Admin", true)
	author := env.createUser(t, "author@example.com", "Author", false)
	idle := env.createUser(t, "idle@example.com", "Idle", false)
	category := env.createCategory(t, "Tech")
	env.createPost(t, author, category, "hello", true)

	// 还持有文章的用户不能删除
	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", author.ID), nil, env.token(t, admin))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 没有内容的可以删除
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", idle.ID), nil, env.token(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", idle.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// 非管理员不能删除用户
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil, env.token(t, author))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
