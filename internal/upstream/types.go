package upstream

import "github.com/skybi/deeplink-proxy/internal/form"

// Offer represents a merchant campaign as returned by the upstream API
type Offer struct {
	OfferName          string       `json:"offer_name"`
	Description        string       `json:"description"`
	PreviewURL         string       `json:"preview_url"`
	OfferID            int64        `json:"offer_id"`
	MerchantID         int64        `json:"merchant_id"`
	Currency           string       `json:"currency"`
	Logo               string       `json:"logo"`
	LookupValue        string       `json:"lookup_value"`
	DatetimeUpdated    string       `json:"datetime_updated"`
	Countries          string       `json:"countries"`
	Categories         string       `json:"categories"`
	Commissions        []Commission `json:"commissions"`
	ValidationTerms    string       `json:"validation_terms"`
	PaymentTerms       string       `json:"payment_terms"`
	TrackingLink       string       `json:"tracking_link"`
	TrackingType       string       `json:"tracking_type"`
	CommissionTracking string       `json:"commission_tracking"`
	DirectoryPage      string       `json:"directory_page"`
}

// Commission represents a single commission rule of an offer
type Commission struct {
	Commission string `json:"Commission"`
}

// OffersPage represents a single page of offers
type OffersPage struct {
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
	Count    int     `json:"count"`
	NextPage *int    `json:"nextPage,omitempty"`
	Offers   []Offer `json:"data"`
}

// AffSubs holds the optional sub-ids attached to a deeplink for attribution
type AffSubs struct {
	AffSub  string `json:"aff_sub,omitempty"`
	AffSub2 string `json:"aff_sub2,omitempty"`
	AffSub3 string `json:"aff_sub3,omitempty"`
	AffSub4 string `json:"aff_sub4,omitempty"`
	AffSub5 string `json:"aff_sub5,omitempty"`
}

// apply sets all non-empty sub-ids on the given request
func (subs AffSubs) apply(request *form.Request) {
	request.
		SetNonEmpty("aff_sub", subs.AffSub).
		SetNonEmpty("aff_sub2", subs.AffSub2).
		SetNonEmpty("aff_sub3", subs.AffSub3).
		SetNonEmpty("aff_sub4", subs.AffSub4).
		SetNonEmpty("aff_sub5", subs.AffSub5)
}

// DeeplinkRequest represents a request to generate a tracking URL for a destination page
type DeeplinkRequest struct {
	OfferID int64  `json:"offer_id"`
	URL     string `json:"url"`
	AffSubs
}

// DeeplinkResult represents a generated tracking URL
type DeeplinkResult struct {
	OfferName    string `json:"offer_name"`
	OfferID      int64  `json:"offer_id"`
	MerchantID   int64  `json:"merchant_id"`
	TrackingLink string `json:"tracking_link"`
}
