package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"liveroom/internal/utils"
)

const (
	// ContextUserID 是驗證後存放使用者 ID (uint) 的 context key
	ContextUserID = "userID"
	// ContextToken 是驗證後存放原始 bearer token 的 context key
	ContextToken = "token"
)

// AuthMiddleware 驗證 Authorization: Bearer <token>，成功後將使用者資訊放入 context
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	if tokens == nil {
		panic("token manager cannot be nil for AuthMiddleware")
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			logrus.WithError(err).Warn("Auth middleware: invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}

// UserID 取出 AuthMiddleware 設定的使用者 ID
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
