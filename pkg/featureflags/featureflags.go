package featureflags

import (
	"context"

	"github.com/IVANFROL/reklama-oleg/pkg/config"

	flagsmith "github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
)

// Flag names understood by the service. Both preserve legacy behavior when
// disabled.
const (
	OpenAdminAPI              = "open-admin-api"
	ValidateApplicationStatus = "validate-application-status"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

type FeatureFlag interface {
	// IsEnabled reports whether the named flag is on, falling back to the
	// given default when no flag backend is configured or the flag is
	// unknown.
	IsEnabled(ctx context.Context, name string, fallback bool) bool
}

type featureflag struct {
	client   *flagsmith.Client
	fallback map[string]bool
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	fallback := map[string]bool{
		OpenAdminAPI:              p.Config.Features.OpenAdminAPI,
		ValidateApplicationStatus: p.Config.Features.ValidateApplicationStatus,
	}

	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{fallback: fallback}
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client:   flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
		fallback: fallback,
	}
}

func (s *featureflag) IsEnabled(ctx context.Context, name string, fallback bool) bool {
	if v, ok := s.fallback[name]; ok {
		fallback = v
	}

	if s.client == nil {
		return fallback
	}

	flags, err := s.client.GetEnvironmentFlags()
	if err != nil {
		return fallback
	}

	enabled, err := flags.IsFeatureEnabled(name)
	if err != nil {
		return fallback
	}
	return enabled
}
