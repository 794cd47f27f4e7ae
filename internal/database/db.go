package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/model"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
)

// InitGorm 按 STORE_DRIVER 打开 postgres 或 sqlite 并运行自动迁移
// AutoMigrate 会自动创建表、添加缺失的列、创建约束和索引
// 若表已存在，只会添加新字段或修改字段（不会删除字段）
func InitGorm(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		path := cfg.SQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("driver %q is not backed by gorm", cfg.StoreDriver)
	}

	gcfg := &gorm.Config{}
	if cfg.IsProd() {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}
	// TimerRecord：每个计时器键一行快照
	if err := db.AutoMigrate(&model.TimerRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
