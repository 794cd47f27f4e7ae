package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/model"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/storage"
)

var _ storage.KeyLister = (*SnapshotRepository)(nil)

// SnapshotRepository 基于 gorm 的快照存储，postgres 和 sqlite 共用
type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{
		DB: db,
	}
}

// Get 键不存在时返回 (nil, nil)
func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var rec model.TimerRecord
	err := r.DB.WithContext(ctx).Where("timer_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Unavailable("get", key, err)
	}
	if rec.Payload == nil {
		return []byte{}, nil
	}
	return rec.Payload, nil
}

// Set 按键 upsert
func (r *SnapshotRepository) Set(ctx context.Context, key string, data []byte) error {
	rec := &model.TimerRecord{TimerKey: key, Payload: data}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "timer_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return storage.Unavailable("set", key, err)
	}
	return nil
}

// Keys 已保存的所有计时器键
func (r *SnapshotRepository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.DB.WithContext(ctx).Model(&model.TimerRecord{}).Order("timer_key").Pluck("timer_key", &keys).Error
	if err != nil {
		return nil, storage.Unavailable("keys", "", err)
	}
	return keys, nil
}
