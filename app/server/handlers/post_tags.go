package handlers

import (
	"blog-backend/app/server/models"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reconcileTags 把一组标签名解析成标签记录：去掉首尾空白、丢弃空串、
// 请求内字节级去重，然后 connect-or-create 。匹配是大小写敏感的。
// 必须在文章写入所在的事务里调用，保证文章和标签关联一起落库或一起回滚
func reconcileTags(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	// 单条带冲突忽略的批量插入：已存在（包括并发下刚被别的请求插入）的名字
	// 直接跳过，靠唯一索引兜底，不做先查再插
	toInsert := make([]models.Tag, 0, len(cleaned))
	for _, name := range cleaned {
		toInsert = append(toInsert, models.Tag{Name: name})
	}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&toInsert).Error; err != nil {
		return nil, fmt.Errorf("upsert tags: %w", err)
	}

	// 统一回查拿 ID ，被冲突忽略的记录插入时拿不到
	var tags []models.Tag
	if err := tx.WithContext(ctx).Where("name IN ?", cleaned).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}

	// 按请求顺序排列
	byName := make(map[string]models.Tag, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag
	}
	ordered := make([]models.Tag, 0, len(cleaned))
	for _, name := range cleaned {
		if tag, ok := byName[name]; ok {
			ordered = append(ordered, tag)
		}
	}

	return ordered, nil
}
