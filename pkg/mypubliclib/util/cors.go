package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultAllowOrigins 常见本地开发地址（localhost/127.0.0.1 的 3000 与 5173 端口）
const DefaultAllowOrigins = "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"

// Cors CORS 中间件：allow 是逗号分隔的允许列表，只有列表内的来源才会获得 CORS 头
func Cors(allow string) gin.HandlerFunc {
	if strings.TrimSpace(allow) == "" {
		allow = DefaultAllowOrigins
	}
	origins := map[string]bool{}
	for _, o := range strings.Split(allow, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		}
		// 对 OPTIONS 预检请求直接返回 204 No Content（浏览器跨域需要）
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
