package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/card-slot/internal/utils"
)

// AuthMiddleware 会话令牌认证中间件
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// RequireSession 需要会话令牌的中间件
// 令牌在创建对局时签发；带:id路径参数的路由还要求令牌绑定的会话一致。
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "NO_TOKEN",
				"message": "缺少会话令牌",
			})
			c.Abort()
			return
		}

		// 验证令牌
		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "INVALID_TOKEN",
				"message": "无效的令牌",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		// 路径中的会话ID必须与令牌一致
		if pathID := c.Param("id"); pathID != "" && pathID != claims.SessionID {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    "SESSION_MISMATCH",
				"message": "令牌与会话不匹配",
			})
			c.Abort()
			return
		}

		// 将玩家信息存入上下文
		c.Set("playerName", claims.PlayerName)
		c.Set("sessionID", claims.SessionID)
		c.Set("gameMode", claims.GameMode)
		c.Set("token", token)

		c.Next()
	}
}

// OptionalSession 可选认证的中间件（不强制要求令牌）
func (m *AuthMiddleware) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token != "" {
			// 尝试验证令牌
			claims, err := m.jwtManager.ValidateToken(token)
			if err == nil {
				c.Set("playerName", claims.PlayerName)
				c.Set("sessionID", claims.SessionID)
				c.Set("gameMode", claims.GameMode)
				c.Set("token", token)
			}
		}

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// 1. 从Authorization Header获取 (Bearer Token)
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 2. 从X-Access-Token Header获取
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// 3. 从Query参数获取（WebSocket握手用）
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}

// GetPlayerName 从上下文获取玩家名
func GetPlayerName(c *gin.Context) (string, bool) {
	if name, exists := c.Get("playerName"); exists {
		if n, ok := name.(string); ok {
			return n, true
		}
	}
	return "", false
}

// GetSessionID 从上下文获取会话ID
func GetSessionID(c *gin.Context) (string, bool) {
	if sessionID, exists := c.Get("sessionID"); exists {
		if id, ok := sessionID.(string); ok {
			return id, true
		}
	}
	return "", false
}

// IsAuthenticated 检查是否已认证
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("sessionID")
	return exists
}
