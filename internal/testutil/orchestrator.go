package testutil

import (
	"context"
	"time"

	"github.com/namancryu/TravelPMS/model"
	"github.com/namancryu/TravelPMS/provider"
)

// InstantSleep is a provider.SleepFunc that only honours cancellation.
func InstantSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Orchestrator builds an orchestrator whose providers are always enabled and
// tried in argument order. Backoff waits are instant.
func Orchestrator(providers ...model.Provider) *provider.Orchestrator {
	descs := make([]provider.Descriptor, 0, len(providers))
	for i, p := range providers {
		descs = append(descs, provider.Descriptor{
			Name:         p.Info().Name,
			Model:        p.Info().Model,
			Priority:     i + 1,
			QuotaRetries: 1,
			RetryBackoff: time.Second,
			Provider:     p,
		})
	}
	return provider.NewOrchestrator(provider.NewRegistry(provider.StaticCredentials{}, descs...),
		provider.WithSleep(InstantSleep))
}
