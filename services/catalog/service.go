package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	activeAdsCacheKey = "catalog:ads:active"
	activeAdsCacheTTL = 5 * time.Minute
)

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	cache *redis.Client

	ads repository.Repository[Ad]
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Cache *redis.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		cache: p.Cache,
		ads:   repository.ProvideStore[Ad](p.DB),
	}
}

// ListActiveAds returns the active catalog, cache-aside through redis when a
// client is configured.
func (s *Service) ListActiveAds(ctx context.Context) ([]*Ad, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, activeAdsCacheKey).Bytes(); err == nil {
			var cached []*Ad
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	ads, err := s.ads.Find(ctx, &Ad{IsActive: true}, repository.WithOrder("created_at asc"))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(ads); err == nil {
			if err := s.cache.Set(ctx, activeAdsCacheKey, raw, activeAdsCacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache active ads", zap.Error(err))
			}
		}
	}

	return ads, nil
}

// GetActiveAd fetches one active ad; inactive and missing ads are
// indistinguishable to callers.
func (s *Service) GetActiveAd(ctx context.Context, id int64) (*Ad, error) {
	ad, err := s.ads.FindOne(ctx, &Ad{ID: id, IsActive: true})
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errutil.NotFound("Ad not found")
	}
	return ad, nil
}

type CreateAdInput struct {
	Title        string
	Description  string
	RewardAmount float64
	ImageURL     *string
}

// CreateAd inserts a catalog entry. There is no HTTP surface for this; the
// seeder and operational tooling are the only callers.
func (s *Service) CreateAd(ctx context.Context, in CreateAdInput) (*Ad, error) {
	if in.RewardAmount <= 0 {
		return nil, errutil.ValidationFailed("reward_amount must be positive")
	}

	ad := &Ad{
		ID:           s.node.Generate().Int64(),
		Title:        in.Title,
		Slug:         slug.Make(in.Title),
		Description:  in.Description,
		RewardAmount: in.RewardAmount,
		ImageURL:     in.ImageURL,
		IsActive:     true,
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return ad, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, activeAdsCacheKey).Err(); err != nil {
		zap.L().Warn("failed to invalidate ads cache", zap.Error(err))
	}
}
