// Package filestore 项目文件元数据存储：一张 project_files 表，以路径为唯一键.
//
// 写入为整行替换（upsert-by-replace），删除为硬删除且对不存在的路径静默成功.
// 同一路径上的 Upsert/Delete 按到达顺序串行执行，后到者覆盖先到者.
package filestore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/oxygen/pkg/cache"
	"github.com/yeisme/oxygen/pkg/internal/model"
)

// replaceColumns upsert 冲突时整体覆盖的列，id 保持不变.
var replaceColumns = []string{
	"filename",
	"file_extension",
	"file_created_at",
	"file_last_modified",
	"is_directory",
	"is_active",
}

// Store 元数据存储，持有数据库句柄但不负责关闭.
type Store struct {
	db       *gorm.DB
	locks    *pathLocks
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// Option 配置 Store.
type Option func(*Store)

// WithCache 为 GetByPath 启用读缓存，写入和删除时同步失效.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger 设置日志器.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New 基于已迁移的数据库创建 Store.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		locks:  newPathLocks(),
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Upsert 按 path 插入或整行替换.
func (s *Store) Upsert(ctx context.Context, r Record) error {
	if r.Path == "" || r.Filename == "" {
		return ErrInvalidRecord
	}

	unlock := s.locks.lock(r.Path)
	defer unlock()

	row := toModel(r)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns(replaceColumns),
	}).Create(&row).Error
	if err != nil {
		return storageErr("upsert", err)
	}

	s.invalidate(ctx, r.Path)

	return nil
}

// Delete 按 path 硬删除，不存在时为 no-op.
func (s *Store) Delete(ctx context.Context, path string) error {
	unlock := s.locks.lock(path)
	defer unlock()

	err := s.db.WithContext(ctx).
		Where(map[string]any{"path": path}).
		Delete(&model.ProjectFile{}).Error
	if err != nil {
		return storageErr("delete", err)
	}

	s.invalidate(ctx, path)

	return nil
}

// GetByPath 按路径读取，不存在时返回 ErrNotFound.
func (s *Store) GetByPath(ctx context.Context, path string) (Record, error) {
	unlock := s.locks.lock(path)
	defer unlock()

	if s.cache != nil {
		if rec, err := cache.Get[Record](ctx, s.cache, cacheKey(path)); err == nil && rec.Path == path {
			return rec, nil
		}
	}

	var row model.ProjectFile

	err := s.db.WithContext(ctx).Where(map[string]any{"path": path}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}

	if err != nil {
		return Record{}, storageErr("get", err)
	}

	rec := fromModel(row)

	if s.cache != nil {
		if err := cache.Set(ctx, s.cache, cacheKey(path), rec, s.cacheTTL); err != nil {
			s.logger.Debug().Err(err).Str("path", path).Msg("cache record")
		}
	}

	return rec, nil
}

// ListActive 返回所有 is_active = 1 的记录，按 id 升序.
func (s *Store) ListActive(ctx context.Context) ([]Record, error) {
	var rows []model.ProjectFile

	err := s.db.WithContext(ctx).
		Where(map[string]any{"is_active": encodeBool(true)}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}

	return out, nil
}

// FindByFilename 按展示文件名查找，多条同名时取最早加入的一条.
func (s *Store) FindByFilename(ctx context.Context, filename string) (Record, error) {
	var row model.ProjectFile

	err := s.db.WithContext(ctx).
		Where(map[string]any{"filename": filename}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}

	if err != nil {
		return Record{}, storageErr("find", err)
	}

	return fromModel(row), nil
}

// Count 返回活跃记录数和总记录数.
func (s *Store) Count(ctx context.Context) (active, total int64, err error) {
	if err := s.db.WithContext(ctx).Model(&model.ProjectFile{}).Count(&total).Error; err != nil {
		return 0, 0, storageErr("count", err)
	}

	err = s.db.WithContext(ctx).Model(&model.ProjectFile{}).
		Where(map[string]any{"is_active": encodeBool(true)}).
		Count(&active).Error
	if err != nil {
		return 0, 0, storageErr("count", err)
	}

	return active, total, nil
}

func (s *Store) invalidate(ctx context.Context, path string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKey(path)); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("invalidate cached record")
	}
}

// cacheKey 路径可能含有后端不接受的字符，统一取哈希.
func cacheKey(path string) string {
	return cache.Key("file", strconv.FormatUint(xxhash.Sum64String(path), 16))
}
