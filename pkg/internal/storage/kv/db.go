package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/model"
)

// DBKV 基于元数据库 kv_entries 表的 KV 实现，适合桌面端需要落盘的少量数据.
type DBKV struct {
	db *gorm.DB
}

// NewDBKV 创建数据库 KV 实例，表结构由 db.Migrate 负责.
func NewDBKV(_ context.Context, _ *configs.KVConfig, deps Deps) (KVStore, error) {
	if deps.DB == nil {
		return nil, errors.New("db kv requires an open database")
	}

	return &DBKV{db: deps.DB}, nil
}

// Get 获取键的值.
func (d *DBKV) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.KVEntry

	err := d.db.WithContext(ctx).Where(byKey(key)).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(key)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	if entry.ExpiresAt != nil && !time.Now().Before(*entry.ExpiresAt) {
		_ = d.Delete(ctx, key)

		return nil, notFound(key)
	}

	return entry.Value, nil
}

// Set 设置键的值.
func (d *DBKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}

	if ttl > 0 {
		exp := time.Now().Add(ttl)
		entry.ExpiresAt = &exp
	}

	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

// Delete 删除键.
func (d *DBKV) Delete(ctx context.Context, key string) error {
	if err := d.db.WithContext(ctx).Where(byKey(key)).Delete(&model.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// Exists 检查键是否存在.
func (d *DBKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := d.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Keys 获取所有匹配的未过期键.
func (d *DBKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	var entries []model.KVEntry

	err := d.db.WithContext(ctx).
		Select("key", "expires_at").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}

	now := time.Now()
	keys := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
			continue
		}

		if matchKey(pattern, e.Key) {
			keys = append(keys, e.Key)
		}
	}

	return keys, nil
}

// Close 数据库连接由存储管理器统一关闭.
func (d *DBKV) Close() error {
	return nil
}

// byKey 生成按主键匹配的条件，列名由方言负责转义.
func byKey(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func init() {
	RegisterKVFactory(KVTypeDB, NewDBKV)
}
