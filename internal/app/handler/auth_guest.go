package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/middleware"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/pkg/mypubliclib/util"
)

type GuestLoginResp struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errVisitorMissing = errors.New("visitor id missing")

// GuestLogin POST /guest-login 为当前 tcid 访客签发令牌
func GuestLogin(secret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid := middleware.VisitorID(c)
		if vid == "" {
			pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeInternal, errVisitorMissing, nil)
			return
		}
		token, err := util.GenerateToken(secret, vid, ttl)
		if err != nil {
			pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeInternal, err, nil)
			return
		}
		// 取 uuid 前缀做展示用户名
		short := vid
		if i := strings.IndexByte(vid, '-'); i > 0 {
			short = vid[:i]
		}
		pkgerr.JSON(c.Writer, c.Request, pkgerr.CodeOK, GuestLoginResp{
			Token:     token,
			Username:  "guest-" + short,
			ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second),
		})
	}
}
