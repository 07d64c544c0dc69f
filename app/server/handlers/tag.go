package handlers

import (
	"blog-backend/app/server/models"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) TagList(c echo.Context) error {
	rctx := c.Request().Context()

	var tags []models.Tag
	if err := a.db.WithContext(rctx).Model(&models.Tag{}).Order("id ASC").Find(&tags).Error; err != nil {
		a.l.Error("failed to get tag list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, tagInfos(tags))
}
