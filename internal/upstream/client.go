package upstream

import (
	"context"
	"encoding/json"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/form"
	"github.com/skybi/deeplink-proxy/internal/session"
	"github.com/tidwall/gjson"
	"net/http"
)

const (
	pathAuthenticate     = "/authenticate"
	pathOffers           = "/offers/all"
	pathGenerateDeeplink = "/deeplink/generate"

	statusSuccess = "success"

	// DefaultOffersPage, DefaultOffersLimit and DefaultOffersSortBy are used by ListOffers for zero arguments
	DefaultOffersPage   = 1
	DefaultOffersLimit  = 100
	DefaultOffersSortBy = "relevance"
)

// Client is the single point of contact with the upstream API.
// It owns the session of exactly one logical publisher.
type Client struct {
	caller  *Caller
	mode    Mode
	session *session.Cell
}

// NewClient creates a new unauthenticated client sending its calls through caller using the given mode
func NewClient(caller *Caller, mode Mode) *Client {
	if mode == nil {
		mode = DirectMode{}
	}
	return &Client{
		caller:  caller,
		mode:    mode,
		session: session.NewCell(),
	}
}

// Mode returns the authorization mode the client was constructed with
func (client *Client) Mode() Mode {
	return client.mode
}

// Authenticate exchanges the publisher's API key and secret for a bearer token and stores it as the session
func (client *Client) Authenticate(ctx context.Context, key, secret string) (string, error) {
	request := form.New().
		Set("key", key).
		Set("secret", secret)

	authorization, _ := client.mode.Authorization(client.session, false)
	response, err := client.send(ctx, pathAuthenticate, request, authorization)
	if err != nil {
		return "", err
	}

	env, valid := parseEnvelope(response.Body)
	if !response.OK() || !valid || env.status != statusSuccess {
		message := defaultAuthenticationMessage
		if valid && env.message != "" {
			message = env.message
		}
		log.Debug().Str("key", key).Int("status", response.StatusCode).Str("message", message).Msg("authentication rejected")
		return "", &AuthenticationError{
			StatusCode: response.StatusCode,
			Message:    message,
		}
	}

	token := env.data.Get("token").String()
	if token == "" {
		return "", &AuthenticationError{
			StatusCode: response.StatusCode,
			Message:    "authentication response did not contain a token",
		}
	}
	client.session.Store(token)
	log.Debug().Str("key", key).Msg("authentication successful")
	return token, nil
}

// ListOffers retrieves a single page of offers.
// Zero values for page and limit and an empty sortBy are replaced by the defaults.
func (client *Client) ListOffers(ctx context.Context, page, limit int, sortBy string) (*OffersPage, error) {
	if page <= 0 {
		page = DefaultOffersPage
	}
	if limit <= 0 {
		limit = DefaultOffersLimit
	}
	if sortBy == "" {
		sortBy = DefaultOffersSortBy
	}
	request := form.New().
		Set("page", page).
		Set("limit", limit).
		Set("sort_by", sortBy)

	response, data, err := client.authenticatedCall(ctx, pathOffers, request, "Failed to fetch offers")
	if err != nil {
		return nil, err
	}
	result := new(OffersPage)
	if err := decodeData(response, data, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateDeeplink generates a tracking URL for the given offer and destination page.
// Only non-empty sub-ids are sent.
func (client *Client) GenerateDeeplink(ctx context.Context, deeplink DeeplinkRequest) (*DeeplinkResult, error) {
	request := form.New().
		Set("offer_id", deeplink.OfferID).
		Set("url", deeplink.URL)
	deeplink.AffSubs.apply(request)

	response, data, err := client.authenticatedCall(ctx, pathGenerateDeeplink, request, "Failed to generate deeplink")
	if err != nil {
		return nil, err
	}
	result := new(DeeplinkResult)
	if err := decodeData(response, data, result); err != nil {
		return nil, err
	}
	return result, nil
}

// IsAuthenticated reports whether the client holds a session token
func (client *Client) IsAuthenticated() bool {
	return client.session.Present()
}

// Logout clears the session; calling it without a session is a no-op
func (client *Client) Logout() {
	client.session.Clear()
}

func (client *Client) authenticatedCall(ctx context.Context, path string, request *form.Request, failure string) (*Response, gjson.Result, error) {
	if !client.session.Present() {
		return nil, gjson.Result{}, ErrNotAuthenticated
	}
	authorization, ok := client.mode.Authorization(client.session, true)
	if !ok {
		return nil, gjson.Result{}, ErrNotAuthenticated
	}

	response, err := client.send(ctx, path, request, authorization)
	if err != nil {
		return nil, gjson.Result{}, err
	}

	if response.StatusCode == http.StatusUnauthorized {
		client.session.Clear()
		log.Debug().Str("path", path).Msg("upstream session expired")
		return nil, gjson.Result{}, ErrSessionExpired
	}

	env, valid := parseEnvelope(response.Body)
	if !response.OK() {
		upstreamErr := &UpstreamError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
		}
		if valid {
			upstreamErr.Message = env.message
		}
		return nil, gjson.Result{}, upstreamErr
	}
	if !valid {
		return nil, gjson.Result{}, &UpstreamError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Message:    "invalid JSON response",
		}
	}
	if env.status != statusSuccess {
		message := env.message
		if message == "" {
			message = failure
		}
		return nil, gjson.Result{}, &UpstreamError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Message:    message,
		}
	}
	return response, env.data, nil
}

func (client *Client) send(ctx context.Context, path string, request *form.Request, authorization string) (*Response, error) {
	body, contentType, err := client.mode.Encode(request)
	if err != nil {
		return nil, err
	}
	return client.caller.Do(ctx, Call{
		Path:          path,
		Body:          body,
		ContentType:   contentType,
		Authorization: authorization,
	})
}

type envelope struct {
	status  string
	message string
	data    gjson.Result
}

func parseEnvelope(body []byte) (envelope, bool) {
	if !gjson.ValidBytes(body) {
		return envelope{}, false
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return envelope{}, false
	}
	return envelope{
		status:  parsed.Get("status").String(),
		message: parsed.Get("message").String(),
		data:    parsed.Get("data"),
	}, true
}

// decodeData decodes the envelope data into target.
// Data that does not fit target is reported as *UpstreamError.
func decodeData(response *Response, data gjson.Result, target any) error {
	if !data.Exists() || data.Type == gjson.Null {
		return nil
	}
	if err := json.Unmarshal([]byte(data.Raw), target); err != nil {
		log.Debug().Err(err).Int("status", response.StatusCode).Msg("upstream response data does not fit")
		return &UpstreamError{
			StatusCode: response.StatusCode,
			Body:       response.Body,
			Message:    "unexpected response data",
		}
	}
	return nil
}
