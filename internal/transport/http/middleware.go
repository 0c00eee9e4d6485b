package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursehub/internal/application/usecase"
)

// AuthMiddleware проверяет подпись access-токена и кладет актора в
// контекст запроса. Здесь сервер в последний раз решает, кто пришел, —
// локальная сессия клиента тут никого не интересует.
func AuthMiddleware(auth *usecase.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		userID, role, err := auth.ValidateAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userId", userID)
		c.Set("userRole", string(role))

		c.Next()
	}
}
