package main

import (
	"context"
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/IVANFROL/reklama-oleg/pkg/authz"
	"github.com/IVANFROL/reklama-oleg/pkg/config"
	"github.com/IVANFROL/reklama-oleg/pkg/db"
	"github.com/IVANFROL/reklama-oleg/pkg/featureflags"
	"github.com/IVANFROL/reklama-oleg/pkg/health"
	"github.com/IVANFROL/reklama-oleg/pkg/logger"
	"github.com/IVANFROL/reklama-oleg/pkg/minio"
	"github.com/IVANFROL/reklama-oleg/pkg/redis"
	"github.com/IVANFROL/reklama-oleg/pkg/server"
	"github.com/IVANFROL/reklama-oleg/services/catalog"
	"github.com/IVANFROL/reklama-oleg/services/identity"
	"github.com/IVANFROL/reklama-oleg/services/ledger"
	"github.com/IVANFROL/reklama-oleg/services/upload"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		minio.Client,
		authz.Module,
		featureflags.Module,
		fx.Provide(provideSnowflakeNode),
		server.ProvideHTTPServer,
		health.Module,
		identity.Module,
		catalog.Module,
		ledger.Module,
		upload.Module,
		fx.Invoke(migrate),
		fx.Invoke(seedCatalog),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&identity.User{},
		&catalog.Ad{},
		&ledger.AdView{},
		&ledger.Application{},
	)
}

func seedCatalog(svc *catalog.Service) error {
	if err := svc.Seed(context.Background()); err != nil {
		zap.L().Error("catalog seed failed", zap.Error(err))
		return err
	}
	return nil
}
