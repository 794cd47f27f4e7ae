package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleGuest 游客令牌的角色
const RoleGuest = "guest"

var ErrInvalidToken = errors.New("无效的token")

type Claims struct {
	VisitorID string `json:"vid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken 为访客签发 HS256 令牌，ttl 后过期
func GenerateToken(secret, visitorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		VisitorID: visitorID,
		Role:      RoleGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token过期时间
			IssuedAt:  jwt.NewNumericDate(now),          // Token签发时间
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 验证 Token 的签名并提取自定义声明；只接受 HS256
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.VisitorID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
