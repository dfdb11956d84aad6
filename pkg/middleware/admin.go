package middleware

import (
	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminGuard enforces the admin role on /admin routes via casbin. The
// legacy surface had no check at all; when open reports true the guard
// steps aside and the routes behave exactly as the original service did.
func AdminGuard(enforcer *casbin.Enforcer, open func(c *gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if open(c) {
			return
		}

		principal, ok := PrincipalFrom(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		allowed, err := enforcer.Enforce(principal.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			zap.L().Error("casbin enforcement failed", zap.Error(err))
			be := errutil.Internal("authorization check failed").(errutil.BaseError)
			c.AbortWithStatusJSON(be.Code.HTTPStatus(), be.JSON())
			return
		}
		if !allowed {
			be := errutil.Forbidden("admin role required").(errutil.BaseError)
			c.AbortWithStatusJSON(be.Code.HTTPStatus(), be.JSON())
		}
	}
}
