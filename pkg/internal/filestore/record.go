package filestore

import (
	"time"

	"github.com/yeisme/oxygen/pkg/internal/model"
)

// Record 一个被跟踪路径的元数据.
type Record struct {
	ID             uint
	Filename       string
	Path           string
	Extension      *string
	CreatedAt      *time.Time
	LastModifiedAt *time.Time
	IsDirectory    *bool
	IsActive       bool
}

// 持久化层以 0/1 表示布尔值，以下转换只在本包内使用.

func encodeBool(b bool) int {
	if b {
		return 1
	}

	return 0
}

func decodeBool(i int) bool {
	return i != 0
}

func encodeOptBool(b *bool) *int {
	if b == nil {
		return nil
	}

	v := encodeBool(*b)

	return &v
}

func decodeOptBool(i *int) *bool {
	if i == nil {
		return nil
	}

	v := decodeBool(*i)

	return &v
}

// legacyTimeLayouts 旧数据可能使用的时间格式.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

func encodeTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.UTC().Format(time.RFC3339Nano)

	return &s
}

// decodeTime 解析失败时视为缺失，不让单行脏数据拖垮整个列表.
func decodeTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}

	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}

	return nil
}

func toModel(r Record) model.ProjectFile {
	return model.ProjectFile{
		Filename:         r.Filename,
		Path:             r.Path,
		FileExtension:    r.Extension,
		FileCreatedAt:    encodeTime(r.CreatedAt),
		FileLastModified: encodeTime(r.LastModifiedAt),
		IsDirectory:      encodeOptBool(r.IsDirectory),
		IsActive:         encodeBool(r.IsActive),
	}
}

func fromModel(m model.ProjectFile) Record {
	return Record{
		ID:             m.ID,
		Filename:       m.Filename,
		Path:           m.Path,
		Extension:      m.FileExtension,
		CreatedAt:      decodeTime(m.FileCreatedAt),
		LastModifiedAt: decodeTime(m.FileLastModified),
		IsDirectory:    decodeOptBool(m.IsDirectory),
		IsActive:       decodeBool(m.IsActive),
	}
}
