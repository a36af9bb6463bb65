// Package model 定义持久化到数据库的表结构.
package model

// ProjectFile 项目文件元数据，每个被跟踪的路径一行.
//
// 布尔列以 INTEGER 0/1 存储，时间列以 RFC3339 文本存储，保持与桌面端既有数据库兼容；
// 业务层不直接使用本结构，由 filestore 包负责转换.
type ProjectFile struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement"`
	// 展示用文件名，不唯一
	Filename string `gorm:"column:filename;size:255;not null;index:idx_filename"`
	// 绝对路径，唯一标识
	Path             string  `gorm:"column:path;size:768;not null;uniqueIndex:idx_path"`
	FileExtension    *string `gorm:"column:file_extension;size:64"`
	FileCreatedAt    *string `gorm:"column:file_created_at;type:text"`
	FileLastModified *string `gorm:"column:file_last_modified;type:text"`
	IsDirectory      *int    `gorm:"column:is_directory;type:integer"`
	IsActive         int     `gorm:"column:is_active;type:integer;not null"`
}

// TableName 固定表名.
func (ProjectFile) TableName() string {
	return "project_files"
}
