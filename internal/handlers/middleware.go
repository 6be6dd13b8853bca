package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/washhub/carwash-platform/internal/model"
)

const ctxUserKey = "current_user"

// Identity разрешает пользователя по заголовку X-Telegram-ID. Транспортный
// слой (бот) уже аутентифицировал отправителя; здесь только маппинг на
// пользователя мойки.
func (h *Handlers) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Telegram-ID")
		telegramID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || telegramID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Telegram-ID header is required"})
			return
		}

		u, err := h.identity.Resolve(c.Request.Context(), telegramID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown or blocked user"})
			return
		}

		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireRole пускает дальше только перечисленные роли.
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(ctxUserKey).(*model.User)
}

// RequestLogger пишет строку на каждый запрос.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
