package handlers

import (
	"blog-backend/app/server/models"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type categoryInfoInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// 仅收集请求中出现的字段，空字符串也要能写入
func (a *App) categoryMapFields(req *categoryInfoInput, category *models.Category) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Name != nil {
		category.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
		fields["description"] = *req.Description
	}
	return fields
}

func (a *App) CategoryCreate(c echo.Context) error {
	// 抓取 user 信息（认证），分类由管理员维护
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req categoryInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if req.Name == nil || *req.Name == "" {
		return a.er(c, http.StatusBadRequest)
	}

	// 分类名全局唯一
	var existing models.Category
	if err := a.db.WithContext(rctx).First(&existing, "name = ?", *req.Name).Error; err == nil {
		return a.er(c, http.StatusConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to check existing category", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建
	var category models.Category
	a.categoryMapFields(&req, &category)

	if err := a.db.WithContext(rctx).Create(&category).Error; err != nil {
		a.l.Error("failed to create category", zap.Any("category", category), zap.Error(err))
		return a.er(c, dbErrStatus(err))
	}

	return c.JSON(http.StatusCreated, categoryInfo(&category))
}

func (a *App) CategoryList(c echo.Context) error {
	rctx := c.Request().Context()

	var categories []models.Category
	if err := a.db.WithContext(rctx).Model(&models.Category{}).Order("id ASC").Find(&categories).Error; err != nil {
		a.l.Error("failed to get category list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resCategories := []CategoryInfo{}
	for i := range categories {
		resCategories = append(resCategories, *categoryInfo(&categories[i]))
	}

	return c.JSON(http.StatusOK, resCategories)
}

func (a *App) CategoryInfoGet(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	// 从数据库中获得指定的分类
	var category models.Category
	if err := a.db.WithContext(rctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get category", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, categoryInfo(&category))
}

func (a *App) CategoryInfoUpdate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证）
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req categoryInfoInput
	if err = c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 从数据库中获得指定的分类
	var category models.Category
	if err := a.db.WithContext(rctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get category", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	fields := a.categoryMapFields(&req, &category)

	// 更新分类信息
	if len(fields) > 0 {
		if err := a.db.WithContext(rctx).Model(&category).Updates(fields).Error; err != nil {
			a.l.Error("failed to update category", zap.Uint("id", id), zap.Error(err))
			return a.er(c, dbErrStatus(err))
		}
	}

	return c.JSON(http.StatusOK, categoryInfo(&category))
}

func (a *App) CategoryDelete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	// 抓取 user 信息（认证）
	_, err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 还被文章引用的分类不能删除
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}

		var postCount int64
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount > 0 {
			return gorm.ErrForeignKeyViolated
		}

		return tx.Delete(&models.Category{}, id).Error
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return a.er(c, http.StatusConflict)
		}
		a.l.Error("failed to delete category", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
