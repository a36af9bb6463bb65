//go:build !no_sqlite && !cgo

package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/oxygen/pkg/configs"
)

// createSQLiteDialector 创建SQLite dialector (纯 Go 版本，modernc 参数格式).
func createSQLiteDialector(cfg *configs.DBConfig) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.GetDSN(), cfg.BusyTimeoutMS))
}

// 注册SQLite dialector工厂函数.
func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
