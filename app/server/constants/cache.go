package constants

import "time"

const (
	CacheKeyUserInfo = "blog:user:info:%d"
)

const (
	CacheExpireUserInfo = 1 * time.Hour
)
