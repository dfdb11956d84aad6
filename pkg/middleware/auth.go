package middleware

import (
	"strings"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const principalKey = "auth.principal"

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// TokenValidator is implemented by the identity service.
type TokenValidator interface {
	ValidateToken(token string) (*Principal, error)
}

// Auth resolves the Authorization header to a Principal and stores it in the
// gin context. Requests without a valid bearer token are rejected.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "Not authenticated")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "Invalid authorization header")
			return
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(principalKey, principal)
	}
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

func unauthorized(c *gin.Context, msg string) {
	be := errutil.Unauthorized(msg).(errutil.BaseError)
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(be.Code.HTTPStatus(), be.JSON())
}
