package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/restapi"
)

// JWTAuthMiddleware 校验 Bearer token（HS256），并把 sub 写入 user_uuid。
// secret 为空时直接放行。
func JWTAuthMiddleware(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			restapi.Failed(c, errno.ErrUnauthorized)
			return
		}
		sub, err := ParseSubject(strings.TrimSpace(raw), secret, issuer)
		if err != nil {
			restapi.Failed(c, errno.NewBizError(errno.ErrUnauthorized, err))
			return
		}
		c.Set("user_uuid", sub)
		c.Next()
	}
}

// ParseSubject 解析并校验 token，返回 subject
func ParseSubject(token, secret, issuer string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
