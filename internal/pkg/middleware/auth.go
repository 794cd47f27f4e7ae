package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/httpx"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/pkg/mypubliclib/util"
)

var errMissingToken = errors.New("缺少Token或格式错误")

// JWTAuth JWT鉴权，通过后把令牌里的访客 ID 放入上下文
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := httpx.BearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeUnauthorized, errMissingToken, nil)
			c.Abort()
			return
		}

		claims, err := util.ParseToken(secret, tokenStr)
		if err != nil {
			pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeUnauthorized, err, nil)
			c.Abort()
			return
		}

		c.Set(visitorKey, claims.VisitorID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
