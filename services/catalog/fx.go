package catalog

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(router *gin.Engine, svc *Service) {
	router.GET("/ads", svc.HandleListAds)
}
