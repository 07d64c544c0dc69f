package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ErrorMessage struct {
	Message string `json:"message"`
}

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &ErrorMessage{
		Message: http.StatusText(statusCode),
	})
}

// dbErrStatus 把存储层错误翻译成业务错误码，不把原始错误直接抛给调用方
func dbErrStatus(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
