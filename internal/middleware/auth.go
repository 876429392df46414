package middleware

import (
	"net/http"
	"strings"

	"medicare-pms/internal/models"
	"medicare-pms/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ambil Header Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortResponse(c, http.StatusUnauthorized, "Token tidak ditemukan")
			return
		}

		// 2. Format harus "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.AbortResponse(c, http.StatusUnauthorized, "Format token salah")
			return
		}

		// 3. Validasi Token
		claims, err := utils.ValidateToken(secret, parts[1])
		if err != nil {
			utils.AbortResponse(c, http.StatusUnauthorized, "Token tidak valid")
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, models.Role(claims.Role))

		c.Next()
	}
}

// RequireRole: hanya role yang disebut yang boleh lewat
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			utils.AbortResponse(c, http.StatusForbidden, "Akses Ditolak")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.AbortResponse(c, http.StatusForbidden, "Akses Ditolak: role "+string(role)+" tidak diizinkan")
	}
}

// CurrentRole returns the role stored by AuthMiddleware.
func CurrentRole(c *gin.Context) (models.Role, bool) {
	v, ok := c.Get(ctxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}

// CurrentUsername returns the username stored by AuthMiddleware.
func CurrentUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
