package constants

import "time"

const (
	AuthTokenDuration = 24 * time.Hour // 登录 token 有效期

	AnonymousCommentAuthor = "Anonymous" // 匿名评论缺省署名
)
