package upstream

import (
	"context"
	"github.com/carlmjohnson/requests"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the base URL of the Involve Asia API
	DefaultBaseURL = "https://api.involve.asia"

	// DefaultTimeout bounds every outbound call
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every outbound call
	DefaultUserAgent = "Mozilla/5.0 (compatible; InvolveAsia-Proxy/1.0)"

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

// Response represents a raw upstream response
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Duration    time.Duration
}

// OK reports whether the response carries a 2xx status code
func (response *Response) OK() bool {
	return response.StatusCode >= 200 && response.StatusCode < 300
}

// Call describes a single outbound POST
type Call struct {
	Path          string
	Body          []byte
	ContentType   string
	Authorization string
}

// CallerOptions configures a Caller
type CallerOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Transport overrides the HTTP transport (mainly used for testing)
	Transport http.RoundTripper
}

// Caller performs raw POST requests against the upstream API.
// It never interprets the response; status codes are returned as they are.
type Caller struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewCaller creates a new caller, filling in the defaults for empty options
func NewCaller(opts CallerOptions) *Caller {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Caller{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
	}
}

// BaseURL returns the base URL every call path is appended to
func (caller *Caller) BaseURL() string {
	return caller.baseURL
}

// TargetURL returns the full URL a call to the given path is sent to
func (caller *Caller) TargetURL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return caller.baseURL + path
}

// Do sends the call and returns the upstream response regardless of its status code.
// Failures to reach the upstream API are returned as *NetworkError.
func (caller *Caller) Do(ctx context.Context, call Call) (*Response, error) {
	target := caller.TargetURL(call.Path)
	start := time.Now()

	var response *Response
	builder := requests.
		URL(target).
		Client(caller.client).
		Method(http.MethodPost).
		BodyBytes(call.Body).
		ContentType(call.ContentType).
		Accept(contentTypeJSON).
		UserAgent(caller.userAgent).
		AddValidator(nil).
		Handle(func(res *http.Response) error {
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return err
			}
			response = &Response{
				StatusCode:  res.StatusCode,
				Body:        body,
				ContentType: res.Header.Get("Content-Type"),
			}
			return nil
		})
	if call.Authorization != "" {
		builder.Header("Authorization", call.Authorization)
	}

	log.Debug().Str("target", target).Int("body_size", len(call.Body)).Msg("calling upstream API")
	if err := builder.Fetch(ctx); err != nil {
		log.Debug().Err(err).Str("target", target).Msg("upstream API unreachable")
		return nil, &NetworkError{Err: err}
	}
	response.Duration = time.Since(start)
	log.Debug().Str("target", target).Int("status", response.StatusCode).Dur("duration", response.Duration).Msg("upstream API responded")
	return response, nil
}
