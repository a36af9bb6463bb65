// Package service 实现门面之外的业务服务：模型设置、元数据快照与巡检.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/rule"
)

const (
	settingsKey = "settings.model"

	DefaultLanguageModelProvider = "openai"
	DefaultLanguageModelName     = "gpt-4"
)

// ErrInvalidSettings 设置更新请求校验失败.
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultSettings 未保存过设置时的默认值.
func DefaultSettings() types.Settings {
	return types.Settings{
		LanguageModelProvider: DefaultLanguageModelProvider,
		LanguageModelName:     DefaultLanguageModelName,
	}
}

// SettingsService 基于 KV 持久化语言模型设置.
type SettingsService struct {
	kv  kv.KVStore
	now func() time.Time

	// mu 串行化读改写.
	mu sync.Mutex
}

// NewSettingsService 创建设置服务.
func NewSettingsService(store kv.KVStore) *SettingsService {
	return &SettingsService{kv: store, now: time.Now}
}

// Get 读取设置，未保存过时返回默认值.
func (s *SettingsService) Get(ctx context.Context) (types.Settings, error) {
	raw, err := s.kv.Get(ctx, settingsKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return DefaultSettings(), nil
	}

	if err != nil {
		return types.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings := DefaultSettings()
	if err := sonic.Unmarshal(raw, &settings); err != nil {
		return types.Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	return settings, nil
}

// Update 按非 nil 字段部分更新并返回更新后的设置.
func (s *SettingsService) Update(ctx context.Context, req types.UpdateSettingsRequest) (types.Settings, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return types.Settings{}, fmt.Errorf("%w: %s", ErrInvalidSettings, rule.Describe(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.Get(ctx)
	if err != nil {
		return types.Settings{}, err
	}

	if req.LanguageModelProvider != nil {
		settings.LanguageModelProvider = *req.LanguageModelProvider
	}

	if req.LanguageModelName != nil {
		settings.LanguageModelName = *req.LanguageModelName
	}

	if req.LanguageModelAPIKey != nil {
		settings.LanguageModelAPIKey = *req.LanguageModelAPIKey
	}

	switch {
	case req.ClearDefaultPrompt:
		settings.DefaultPrompt = nil
	case req.DefaultPrompt != nil:
		p := *req.DefaultPrompt

		now := s.now().UTC().Format(time.RFC3339)
		if p.CreatedAt == "" {
			p.CreatedAt = now
		}

		p.UpdatedAt = now
		settings.DefaultPrompt = &p
	}

	raw, err := sonic.Marshal(settings)
	if err != nil {
		return types.Settings{}, fmt.Errorf("encode settings: %w", err)
	}

	if err := s.kv.Set(ctx, settingsKey, raw, 0); err != nil {
		return types.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	return settings, nil
}

// IsDefaultPrompt 判断提示词是否为当前默认提示词（按 token 比较）.
func (s *SettingsService) IsDefaultPrompt(ctx context.Context, p types.Prompt) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}

	return settings.DefaultPrompt != nil && settings.DefaultPrompt.Token == p.Token, nil
}
