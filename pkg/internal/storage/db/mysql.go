//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/oxygen/pkg/configs"
)

// createMySQLDialector 创建MySQL dialector.
func createMySQLDialector(cfg *configs.DBConfig) gorm.Dialector {
	return mysql.Open(cfg.GetDSN())
}

// 注册MySQL dialector工厂函数.
func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
