// Package main 启动应用程序
package main

import (
	"fmt"
	"os"

	"github.com/yeisme/oxygen/pkg/cmd"
)

//	@title			oxygen API
//	@version		1.0
//	@description	oxygen 为展示端提供宿主文件系统访问与项目文件元数据存储，所有请求经由 /api/v1/ipc/{name} 门面转发。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
