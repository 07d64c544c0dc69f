package handlers

import (
	"blog-backend/app/server/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 已存在的标签被复用（ connect ），不产生重复行
	require.NoError(t, env.db.Create(&models.Tag{Name: "go"}).Error)

	tags, err := reconcileTags(ctx, env.db, []string{" go ", "Go", "go", "", "   "})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	// 结果按请求顺序排列
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, "Go", tags[1].Name)

	var count int64
	require.NoError(t, env.db.Model(&models.Tag{}).Where("name = ?", "go").Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, env.db.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestReconcileTagsEmptyInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tags, err := reconcileTags(ctx, env.db, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)

	tags, err = reconcileTags(ctx, env.db, []string{"", "  "})
	require.NoError(t, err)
	assert.Empty(t, tags)

	var count int64
	require.NoError(t, env.db.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
