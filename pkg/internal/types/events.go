package types

import "time"

// FileEvent 推送给展示端的元数据变更通知.
type FileEvent struct {
	Type       string    `json:"type"` // upserted | deleted
	Path       string    `json:"path"`
	Filename   string    `json:"filename,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
