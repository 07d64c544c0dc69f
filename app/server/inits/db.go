package inits

import (
	"blog-backend/app/server/models"
	"fmt"

	"github.com/alexedwards/argon2id"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func DB(conn string) (db *gorm.DB, err error) {
	// 打开连接
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{
		TranslateError: true, // 约束冲突需要映射成 gorm 错误
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = mig(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 初始化启动数据
	if err = initData(db); err != nil {
		return nil, fmt.Errorf("failed to init data into database: %w", err)
	}

	// 返回
	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	)
}

func initData(db *gorm.DB) (err error) {
	// 查询现有记录数量
	var counter int64

	// 初始化用户
	if err = db.Model(&models.User{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get user count: %w", err)
	} else if counter == 0 { // 没有任何用户，添加初始管理员
		// 创建密码
		var password string
		if password, err = argon2id.CreateHash("password", argon2id.DefaultParams); err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}

		// 插入记录
		if err = db.Create(&models.User{
			Email:    "admin@blog.local",
			Name:     "Blog Admin",
			IsAdmin:  true,
			Password: password,
		}).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
	}

	// 已有数据或全部导入成功
	return nil
}
