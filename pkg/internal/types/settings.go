package types

// Prompt 用户保存的提示词.
type Prompt struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"       rule:"required"`
	Content   string `json:"content"`
	Token     string `json:"token"      rule:"required"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Settings 语言模型相关设置.
type Settings struct {
	LanguageModelProvider string  `json:"languageModelProvider" rule:"required"`
	LanguageModelName     string  `json:"languageModelName"     rule:"required"`
	LanguageModelAPIKey   string  `json:"languageModelApiKey"`
	DefaultPrompt         *Prompt `json:"defaultPrompt"         rule:"omitempty"`
}

// UpdateSettingsRequest 部分更新设置，nil 字段保持不变.
type UpdateSettingsRequest struct {
	LanguageModelProvider *string `json:"languageModelProvider" rule:"omitempty,min=1"`
	LanguageModelName     *string `json:"languageModelName"     rule:"omitempty,min=1"`
	LanguageModelAPIKey   *string `json:"languageModelApiKey"`
	DefaultPrompt         *Prompt `json:"defaultPrompt"         rule:"omitempty"`
	// ClearDefaultPrompt 为 true 时移除默认提示词
	ClearDefaultPrompt bool `json:"clearDefaultPrompt"`
}
