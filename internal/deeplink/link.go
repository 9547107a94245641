package deeplink

import (
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"time"
)

// GeneratedLink represents a single deeplink generated through the upstream API together with its origin
type GeneratedLink struct {
	ID           string           `json:"id"`
	OfferID      int64            `json:"offer_id"`
	OfferName    string           `json:"offer_name"`
	MerchantID   int64            `json:"merchant_id"`
	TrackingLink string           `json:"tracking_link"`
	OriginalURL  string           `json:"original_url"`
	GeneratedAt  time.Time        `json:"generated_at"`
	AffSubs      upstream.AffSubs `json:"aff_subs"`

	// Sequence orders links by generation; it is assigned by the storage driver
	Sequence uint64 `json:"-"`
	// Created is GeneratedAt as unix nanoseconds, used for retention pruning
	Created int64 `json:"-"`
}
