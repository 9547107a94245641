package upstream

import (
	"errors"
	"fmt"
	"github.com/skybi/deeplink-proxy/internal/form"
	"github.com/skybi/deeplink-proxy/internal/session"
	"strings"
)

const (
	// ModeNameDirect identifies DirectMode
	ModeNameDirect = "direct"

	// ModeNameGateway identifies GatewayMode
	ModeNameGateway = "gateway"
)

// Mode decides which credential travels with outbound calls and how request bodies are encoded.
// Exactly one mode is chosen when a Client is constructed; it never changes per request.
type Mode interface {
	// Name returns the configuration name of the mode
	Name() string

	// Authorization returns the 'Authorization' header value for a call.
	// ok is false if the call requires a session token that is not available.
	Authorization(cell *session.Cell, authenticated bool) (header string, ok bool)

	// Encode encodes the outbound request body
	Encode(request *form.Request) (body []byte, contentType string, err error)

	sealed()
}

// DirectMode talks to the upstream API itself: authenticated calls carry the session's bearer token and bodies
// are form encoded
type DirectMode struct{}

var _ Mode = DirectMode{}

// Name returns "direct"
func (DirectMode) Name() string {
	return ModeNameDirect
}

// Authorization returns the session's bearer token for authenticated calls and nothing otherwise
func (DirectMode) Authorization(cell *session.Cell, authenticated bool) (string, bool) {
	if !authenticated {
		return "", true
	}
	return cell.AuthorizationHeader()
}

// Encode form encodes the request
func (DirectMode) Encode(request *form.Request) ([]byte, string, error) {
	return []byte(request.Encode()), contentTypeForm, nil
}

func (DirectMode) sealed() {}

// GatewayMode talks to a trusted gateway holding its own upstream access: every call carries the fixed gateway
// credential and bodies are sent as JSON for the gateway to translate
type GatewayMode struct {
	Credential string
}

var _ Mode = GatewayMode{}

// Name returns "gateway"
func (GatewayMode) Name() string {
	return ModeNameGateway
}

// Authorization returns the gateway credential, regardless of the session
func (mode GatewayMode) Authorization(_ *session.Cell, _ bool) (string, bool) {
	return "Bearer " + mode.Credential, true
}

// Encode encodes the request as a JSON object
func (GatewayMode) Encode(request *form.Request) ([]byte, string, error) {
	body, err := request.JSON()
	if err != nil {
		return nil, "", err
	}
	return body, contentTypeJSON, nil
}

func (GatewayMode) sealed() {}

// ParseMode resolves a configured mode name into a Mode
func ParseMode(name, gatewayCredential string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModeNameDirect:
		return DirectMode{}, nil
	case ModeNameGateway:
		if gatewayCredential == "" {
			return nil, errors.New("gateway mode requires a gateway credential")
		}
		return GatewayMode{Credential: gatewayCredential}, nil
	default:
		return nil, fmt.Errorf("unknown client mode '%s' (expected '%s' or '%s')", name, ModeNameDirect, ModeNameGateway)
	}
}
