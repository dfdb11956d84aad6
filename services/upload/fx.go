package upload

import (
	"fmt"

	"github.com/IVANFROL/reklama-oleg/pkg/config"
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"
	"github.com/IVANFROL/reklama-oleg/services/identity"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("upload.service",
	fx.Provide(ProvideObjectStore),
	fx.Provide(ProvideService),
	fx.Invoke(registerRoutes),
)

type storeParams struct {
	fx.In
	Config *config.Config
	Minio  *minio.Client `optional:"true"`
}

func ProvideObjectStore(p storeParams) (ObjectStore, error) {
	switch p.Config.Uploads.Backend {
	case "minio":
		if p.Minio == nil {
			return nil, fmt.Errorf("uploads backend is minio but no minio client is configured")
		}
		zap.L().Info("using minio object store",
			zap.String("bucket", p.Config.Minio.BucketName))
		return NewMinioStore(p.Minio, p.Config.Minio.BucketName), nil
	default:
		zap.L().Info("using local object store",
			zap.String("dir", p.Config.Uploads.Dir))
		return NewLocalStore(p.Config.Uploads.Dir)
	}
}

func ProvideService(store ObjectStore, node *snowflake.Node, cfg *config.Config) *Service {
	return NewService(store, node, cfg.Uploads.PublicPrefix)
}

type routeParams struct {
	fx.In
	Router   *gin.Engine
	Service  *Service
	Identity *identity.Service
	Config   *config.Config
}

func registerRoutes(p routeParams) {
	authed := p.Router.Group("", middleware.Auth(p.Identity))
	authed.POST("/upload", p.Service.HandleUpload)

	p.Router.GET(p.Config.Uploads.PublicPrefix+"/:filename", p.Service.HandleServe)
}
