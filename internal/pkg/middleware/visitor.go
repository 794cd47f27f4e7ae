package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "tcid"
	visitorKey    = "visitor_id"
)

// Visitor 为每个游客分配唯一 ID（存储在 cookie 中，有效期一年）。
// secure 为 true 时 cookie 只走 HTTPS。
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if _, perr := uuid.Parse(vid); err != nil || perr != nil {
			vid = uuid.NewString()
			c.SetCookie(VisitorCookie, vid, 3600*24*365, "/", "", secure, true)
		}
		c.Set(visitorKey, vid)
		c.Next()
	}
}

// VisitorID 当前请求的访客 ID；JWTAuth 通过后以令牌里的为准
func VisitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}
