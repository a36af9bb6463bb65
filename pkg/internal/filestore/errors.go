package filestore

import (
	"errors"
	"fmt"
)

// ErrNotFound 按路径或文件名查询时记录不存在.
var ErrNotFound = errors.New("file record not found")

// ErrInvalidRecord 记录缺少 path 或 filename.
var ErrInvalidRecord = errors.New("file record requires path and filename")

// StorageError 底层存储介质失败（连接、约束、磁盘等）.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("filestore %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError 判断 err 链中是否包含 StorageError.
func IsStorageError(err error) bool {
	var se *StorageError

	return errors.As(err, &se)
}
