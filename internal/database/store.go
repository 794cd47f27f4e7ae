package database

import (
	"context"
	"fmt"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/repository"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/storage"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

// OpenStore 按配置打开计时器快照存储；返回的 close 在进程退出前调用
func OpenStore(ctx context.Context, cfg *config.Config) (timer.Store, func() error, error) {
	nop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nop, nil
	case config.DriverFile:
		s, err := storage.NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := InitGorm(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("db init: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSnapshotRepository(db), sqlDB.Close, nil
	case config.DriverPgx:
		s, err := storage.NewPgxStore(ctx, cfg.PgxURL())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
