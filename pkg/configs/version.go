package configs

// AppVersion 构建时通过 -ldflags "-X github.com/yeisme/oxygen/pkg/configs.AppVersion=..." 注入.
var AppVersion = "0.1.0-dev"
