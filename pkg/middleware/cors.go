package middleware

import (
	"slices"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/configs"
)

// CORSMiddleware CORS中间件，允许展示端来源携带 Authorization 调用.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = cfg.CORSOrigins
	config.AddAllowHeaders("Authorization", RequestIDHeader)
	config.AddExposeHeaders(RequestIDHeader)
	config.CustomSchemas = customSchemes(cfg.CORSOrigins)

	if cfg.Debug || len(cfg.CORSOrigins) == 0 {
		config.AllowOrigins = nil
		config.AllowAllOrigins = true
	}

	return cors.New(config)
}

// customSchemes 收集 http/https 以外的来源协议（如桌面壳的 app://）.
func customSchemes(origins []string) []string {
	var out []string

	for _, o := range origins {
		scheme, _, ok := strings.Cut(o, "://")
		if !ok || scheme == "http" || scheme == "https" || slices.Contains(out, scheme) {
			continue
		}

		out = append(out, scheme)
	}

	return out
}
