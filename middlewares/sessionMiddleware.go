package middlewares

import (
	"strconv"

	"bitbucket.org/mmdatafocus/cafepos_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware copies the caller identity headers set by the upstream
// gateway into the request context. Token verification lives with the
// gateway, not here; absent headers leave the context unpopulated and
// history rows fall back to the system user.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if v := c.GetHeader("x-user-id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetUserIdInContext(ctx, id)
			}
		}
		if v := c.GetHeader("x-user-name"); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		if v := c.GetHeader("x-cash-register-id"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetCashRegisterIdInContext(ctx, id)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
