package handlers

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, a *App) {
	e.GET("/healthz", a.HealthCheck)

	api := e.Group("/api")

	// 认证
	api.POST("/auth/register", a.AuthRegister)
	api.POST("/auth/login", a.AuthLogin)

	// 用户
	api.GET("/users", a.UserList)
	api.GET("/users/:id", a.UserInfoGet)
	api.PATCH("/users/:id", a.UserInfoUpdate)
	api.PATCH("/users/:id/password", a.UserPasswordUpdate)
	api.PATCH("/users/:id/role", a.UserRoleUpdate)
	api.DELETE("/users/:id", a.UserDelete)

	// 分类
	api.GET("/categories", a.CategoryList)
	api.POST("/categories", a.CategoryCreate)
	api.GET("/categories/:id", a.CategoryInfoGet)
	api.PATCH("/categories/:id", a.CategoryInfoUpdate)
	api.DELETE("/categories/:id", a.CategoryDelete)

	// 标签
	api.GET("/tags", a.TagList)

	// 文章
	api.GET("/posts", a.PostList)
	api.POST("/posts", a.PostCreate)
	api.GET("/posts/admin/all", a.PostAdminList)
	api.GET("/posts/:id", a.PostInfoGet)
	api.PATCH("/posts/:id", a.PostInfoUpdate)
	api.DELETE("/posts/:id", a.PostDelete)

	// 评论
	api.POST("/comments", a.CommentCreate)
	api.GET("/comments/post/:postId", a.CommentListByPost)
	api.GET("/comments/:id", a.CommentInfoGet)
	api.PATCH("/comments/:id", a.CommentInfoUpdate)
	api.DELETE("/comments/:id", a.CommentDelete)
	api.DELETE("/comments/admin/:id", a.CommentAdminDelete)
}
