package deeplink

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"strings"
	"time"
)

// ErrNoURLs is returned by Generator.Generate if no non-blank destination URL was given
var ErrNoURLs = errors.New("at least one destination URL is required")

// LinkGenerator is the part of the upstream client the generator depends on
type LinkGenerator interface {
	GenerateDeeplink(ctx context.Context, deeplink upstream.DeeplinkRequest) (*upstream.DeeplinkResult, error)
}

// Generator generates deeplinks in batches and records them in the history
type Generator struct {
	client  LinkGenerator
	storage Storage
	now     func() time.Time
}

// NewGenerator creates a new generator using the given upstream client and history storage
func NewGenerator(client LinkGenerator, storage Storage) *Generator {
	return &Generator{
		client:  client,
		storage: storage,
		now:     time.Now,
	}
}

// Generate generates one deeplink per non-blank URL in the given order.
// The first failing call aborts the batch; a failed batch is not recorded.
func (generator *Generator) Generate(ctx context.Context, offerID int64, urls []string, subs upstream.AffSubs) ([]*GeneratedLink, error) {
	targets := make([]string, 0, len(urls))
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			targets = append(targets, url)
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoURLs
	}

	links := make([]*GeneratedLink, 0, len(targets))
	for _, target := range targets {
		result, err := generator.client.GenerateDeeplink(ctx, upstream.DeeplinkRequest{
			OfferID: offerID,
			URL:     target,
			AffSubs: subs,
		})
		if err != nil {
			log.Debug().Err(err).Int64("offer_id", offerID).Str("url", target).Msg("deeplink batch aborted")
			return nil, err
		}

		generatedAt := generator.now().UTC().Truncate(time.Second)
		links = append(links, &GeneratedLink{
			ID:           uuid.NewString(),
			OfferID:      offerID,
			OfferName:    result.OfferName,
			MerchantID:   result.MerchantID,
			TrackingLink: result.TrackingLink,
			OriginalURL:  target,
			GeneratedAt:  generatedAt,
			AffSubs:      subs,
			Created:      generatedAt.UnixNano(),
		})
	}

	if err := generator.storage.Insert(ctx, links...); err != nil {
		return nil, err
	}
	return links, nil
}

// History lists recorded links newest first together with their total amount
func (generator *Generator) History(ctx context.Context, offset, limit int) ([]*GeneratedLink, int, error) {
	total, err := generator.storage.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	links, err := generator.storage.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// Forget clears the history
func (generator *Generator) Forget(ctx context.Context) error {
	return generator.storage.Clear(ctx)
}

// Prune removes all links older than the given retention
func (generator *Generator) Prune(ctx context.Context, retention time.Duration) (int, error) {
	return generator.storage.PruneBefore(ctx, generator.now().Add(-retention))
}
