// Package types 定义门面请求与响应的数据结构，均为可 JSON 序列化的纯数据.
package types

import "time"

// FileDetails 展示端使用的项目文件描述，可空字段序列化为 null.
type FileDetails struct {
	Filename       string     `json:"filename"       rule:"required"`
	Path           string     `json:"path"           rule:"required,hostpath"`
	IsActive       bool       `json:"isActive"`
	IsDirectory    *bool      `json:"isDirectory"`
	Extension      *string    `json:"extension"`
	CreatedAt      *time.Time `json:"createdAt"`
	LastModifiedAt *time.Time `json:"lastModifiedAt"`
}

// StatResult stat 请求结果.
type StatResult struct {
	CreationTime     time.Time `json:"creationTime"`
	ModificationTime time.Time `json:"modificationTime"`
	Extension        string    `json:"extension"`
}
