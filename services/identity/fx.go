package identity

import (
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(router *gin.Engine, svc *Service) {
	router.POST("/register", svc.HandleRegister)
	router.POST("/token", svc.HandleToken)

	authed := router.Group("", middleware.Auth(svc))
	authed.GET("/me", svc.HandleMe)
	authed.GET("/balance", svc.HandleBalance)
}
