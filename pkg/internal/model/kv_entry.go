package model

import "time"

// KVEntry 数据库后端的键值条目，用于设置等少量需要落盘的数据.
type KVEntry struct {
	Key       string `gorm:"column:key;primaryKey;size:512"`
	Value     []byte `gorm:"column:value"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

// TableName 固定表名.
func (KVEntry) TableName() string {
	return "kv_entries"
}
