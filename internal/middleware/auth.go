package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthConfig contém a configuração do middleware de autenticação
type AuthConfig struct {
	TokenAPI string
	// AllowQueryToken aceita ?token= (navegadores não enviam headers no handshake websocket)
	AllowQueryToken bool
}

// BearerAuth retorna um middleware que valida o token Bearer.
// TokenAPI vazio desliga a verificação.
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TokenAPI == "" {
			c.Next()
			return
		}

		token, ok := extractToken(c, cfg.AllowQueryToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "header Authorization ausente ou inválido, esperado: Bearer {token}",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.TokenAPI)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "token inválido",
			})
			return
		}

		c.Next()
	}
}

func extractToken(c *gin.Context, allowQuery bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if allowQuery {
			if t := c.Query("token"); t != "" {
				return t, true
			}
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
