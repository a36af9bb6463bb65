package facade

import (
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

func toRecord(d types.FileDetails) filestore.Record {
	return filestore.Record{
		Filename:       d.Filename,
		Path:           d.Path,
		Extension:      d.Extension,
		CreatedAt:      d.CreatedAt,
		LastModifiedAt: d.LastModifiedAt,
		IsDirectory:    d.IsDirectory,
		IsActive:       d.IsActive,
	}
}

func fromRecord(r filestore.Record) types.FileDetails {
	return types.FileDetails{
		Filename:       r.Filename,
		Path:           r.Path,
		IsActive:       r.IsActive,
		IsDirectory:    r.IsDirectory,
		Extension:      r.Extension,
		CreatedAt:      r.CreatedAt,
		LastModifiedAt: r.LastModifiedAt,
	}
}
