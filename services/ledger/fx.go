package ledger

import (
	"github.com/IVANFROL/reklama-oleg/pkg/featureflags"
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"
	"github.com/IVANFROL/reklama-oleg/services/identity"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

type routeParams struct {
	fx.In
	Router   *gin.Engine
	Service  *Service
	Identity *identity.Service
	Enforcer *casbin.Enforcer
	Flags    featureflags.FeatureFlag
}

func registerRoutes(p routeParams) {
	auth := middleware.Auth(p.Identity)

	authed := p.Router.Group("", auth)
	authed.POST("/ads/view", p.Service.HandleViewAd)
	authed.POST("/applications", p.Service.HandleSubmitApplication)
	authed.GET("/applications", p.Service.HandleListMyApplications)

	p.Router.GET("/applications/cost", p.Service.HandleCost)

	// The legacy admin surface had no auth at all. The guard enforces the
	// admin role by default; the open-admin-api toggle restores the legacy
	// behavior for compatibility testing.
	open := func(c *gin.Context) bool {
		return p.Flags.IsEnabled(c.Request.Context(), featureflags.OpenAdminAPI, false)
	}
	optionalAuth := func(c *gin.Context) {
		if open(c) {
			return
		}
		auth(c)
	}

	admin := p.Router.Group("/admin", optionalAuth, middleware.AdminGuard(p.Enforcer, open))
	admin.GET("/applications", p.Service.HandleListAllApplications)
	admin.PUT("/applications/:id", p.Service.HandleUpdateApplicationStatus)
}
