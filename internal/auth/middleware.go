package auth

import (
	"net"
	"net/http"
	"strings"

	"pokerroom/internal/handlers"
	"pokerroom/internal/models"
	"pokerroom/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware проверяет валидность access токена
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Требуется авторизация",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return handlers.AccessSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Неверный или просроченный токен",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN_CLAIMS",
				Message: "Невозможно прочитать claims токена",
			})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_USER_ID",
				Message: "Невозможно извлечь user_id",
			})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = models.RolePlayer
		}

		c.Set("userID", uint(userID))
		c.Set("role", role)
		c.Next()
	}
}

// RequireStaff пускает дальше только персонал зала.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleStaff {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "ACCESS_DENIED",
				Message: "Операция доступна только персоналу",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPAllowlist ограничивает доступ к служебным эндпоинтам списком CIDR.
// Пустой список означает отсутствие ограничений.
func IPAllowlist(cidrs []string) gin.HandlerFunc {
	var nets []*net.IPNet
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			// Одиночный адрес трактуем как /32
			raw += "/32"
		}
		if _, n, err := net.ParseCIDR(raw); err == nil {
			nets = append(nets, n)
		}
	}

	return func(c *gin.Context) {
		if len(nets) == 0 {
			c.Next()
			return
		}
		ip := net.ParseIP(c.ClientIP())
		allowed := false
		for _, n := range nets {
			if ip != nil && n.Contains(ip) {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "IP_NOT_ALLOWED",
				Message: "Доступ с этого адреса запрещён",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
