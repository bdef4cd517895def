package db

import (
	"fmt"
	"metro-routing/config"
	"metro-routing/model"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// maxRetries 启动时数据库可能还没准备好 (Docker)
const maxRetries = 30

// Open 连接 PostgreSQL 并自动迁移表结构
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	return open(postgres.Open(cfg.DSN()), log, maxRetries, 2*time.Second)
}

func open(dialector gorm.Dialector, log *zap.Logger, retries int, wait time.Duration) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	// 带重试的数据库连接
	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < retries; i++ {
		conn, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		log.Warn("等待数据库就绪", zap.Int("attempt", i+1), zap.Int("max", retries), zap.Error(err))
		time.Sleep(wait)
	}
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 自动迁移模式 (自动创建表结构)
	if err := conn.AutoMigrate(&model.User{}, &model.FactRecord{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info("数据库连接并初始化成功")
	return conn, nil
}
