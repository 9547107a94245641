package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// recordedCall captures what the fake upstream API received
type recordedCall struct {
	Path          string
	Body          string
	ContentType   string
	Authorization string
	UserAgent     string
	Accept        string
}

type fakeUpstream struct {
	*httptest.Server

	mtx   sync.Mutex
	calls []recordedCall
}

func (upstream *fakeUpstream) Calls() []recordedCall {
	upstream.mtx.Lock()
	defer upstream.mtx.Unlock()
	return append([]recordedCall(nil), upstream.calls...)
}

func (upstream *fakeUpstream) LastCall(t *testing.T) recordedCall {
	t.Helper()
	calls := upstream.Calls()
	if len(calls) == 0 {
		t.Fatal("expected the upstream API to be called")
	}
	return calls[len(calls)-1]
}

// newFakeUpstream starts a fake upstream API answering each path with a fixed status and body
func newFakeUpstream(t *testing.T, routes map[string]func() (int, string)) *fakeUpstream {
	t.Helper()
	upstream := &fakeUpstream{}
	upstream.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		upstream.mtx.Lock()
		upstream.calls = append(upstream.calls, recordedCall{
			Path:          r.URL.Path,
			Body:          string(body),
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.Header.Get("User-Agent"),
			Accept:        r.Header.Get("Accept"),
		})
		upstream.mtx.Unlock()

		route, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		status, response := route()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func respond(status int, body string) func() (int, string) {
	return func() (int, string) {
		return status, body
	}
}

const (
	authSuccess = `{"status":"success","message":"Authenticated","data":{"token":"T"}}`
	offersPage  = `{"status":"success","message":"","data":{"page":1,"limit":100,"count":1,"nextPage":2,"data":[{"offer_name":"Shop","offer_id":7,"merchant_id":3,"commissions":[{"Commission":"5%"}]}]}}`
	deeplinkOK  = `{"status":"success","message":"","data":{"offer_name":"Shop","offer_id":42,"merchant_id":3,"tracking_link":"https://invol.co/abc"}}`
)

func newTestClient(upstream *fakeUpstream, mode Mode) *Client {
	return NewClient(NewCaller(CallerOptions{BaseURL: upstream.URL}), mode)
}

func authenticate(t *testing.T, client *Client) {
	t.Helper()
	if _, err := client.Authenticate(context.Background(), "k", "s"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestClient_Authenticate_Success(t *testing.T) {
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/authenticate": respond(http.StatusOK, authSuccess),
		"/offers/all":   respond(http.StatusOK, offersPage),
	})
	client := newTestClient(upstream, DirectMode{})

	token, err := client.Authenticate(context.Background(), "my key", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if token != "T" {
		t.Errorf("Authenticate() = %q, want %q", token, "T")
	}
	if !client.IsAuthenticated() {
		t.Error("expected client to be authenticated")
	}

	call := upstream.LastCall(t)
	if call.Body != "key=my+key&secret=s3cret" {
		t.Errorf("authenticate body = %q", call.Body)
	}
	if call.Authorization != "" {
		t.Errorf("expected no Authorization header on authenticate, got %q", call.Authorization)
	}
	if call.ContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", call.ContentType)
	}
	if call.UserAgent != DefaultUserAgent {
		t.Errorf("User-Agent = %q", call.UserAgent)
	}
	if call.Accept != "application/json" {
		t.Errorf("Accept = %q", call.Accept)
	}

	page, err := client.ListOffers(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatalf("ListOffers() error = %v", err)
	}
	call = upstream.LastCall(t)
	if call.Authorization != "Bearer T" {
		t.Errorf("Authorization = %q, want %q", call.Authorization, "Bearer T")
	}
	if call.Body != "page=1&limit=100&sort_by=relevance" {
		t.Errorf("offers body = %q", call.Body)
	}
	if page.Count != 1 || len(page.Offers) != 1 || page.Offers[0].OfferID != 7 {
		t.Errorf("unexpected offers page: %+v", page)
	}
	if page.NextPage == nil || *page.NextPage != 2 {
		t.Errorf("NextPage = %v, want 2", page.NextPage)
	}
	if page.Offers[0].Commissions[0].Commission != "5%" {
		t.Errorf("unexpected commissions: %+v", page.Offers[0].Commissions)
	}
}

func TestClient_Authenticate_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"error status", http.StatusOK, `{"status":"error","message":"Invalid key or secret"}`, "Invalid key or secret"},
		{"error status without message", http.StatusOK, `{"status":"error"}`, defaultAuthenticationMessage},
		{"non-2xx with envelope", http.StatusForbidden, `{"status":"error","message":"Forbidden"}`, "Forbidden"},
		{"non-2xx without JSON", http.StatusBadGateway, `bad gateway`, defaultAuthenticationMessage},
		{"success without token", http.StatusOK, `{"status":"success","data":{}}`, "authentication response did not contain a token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newFakeUpstream(t, map[string]func() (int, string){
				"/authenticate": respond(tt.status, tt.body),
			})
			client := newTestClient(upstream, DirectMode{})

			_, err := client.Authenticate(context.Background(), "k", "s")
			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected *AuthenticationError, got %v", err)
			}
			if authErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", authErr.Message, tt.wantMessage)
			}
			if authErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", authErr.StatusCode, tt.status)
			}
			if client.IsAuthenticated() {
				t.Error("expected client to stay unauthenticated")
			}
		})
	}
}

func TestClient_RequiresSession(t *testing.T) {
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/offers/all":        respond(http.StatusOK, offersPage),
		"/deeplink/generate": respond(http.StatusOK, deeplinkOK),
	})

	for _, mode := range []Mode{DirectMode{}, GatewayMode{Credential: "anon"}} {
		t.Run(mode.Name(), func(t *testing.T) {
			client := newTestClient(upstream, mode)

			if _, err := client.ListOffers(context.Background(), 1, 10, ""); !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("ListOffers() error = %v, want ErrNotAuthenticated", err)
			}
			if _, err := client.GenerateDeeplink(context.Background(), DeeplinkRequest{OfferID: 1, URL: "https://x"}); !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("GenerateDeeplink() error = %v, want ErrNotAuthenticated", err)
			}
		})
	}

	if n := len(upstream.Calls()); n != 0 {
		t.Errorf("expected no upstream calls, got %d", n)
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	unauthorized := respond(http.StatusUnauthorized, `{"status":"error","message":"Token expired"}`)
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/authenticate":      respond(http.StatusOK, authSuccess),
		"/offers/all":        unauthorized,
		"/deeplink/generate": unauthorized,
	})
	client := newTestClient(upstream, DirectMode{})

	operations := map[string]func() error{
		"ListOffers": func() error {
			_, err := client.ListOffers(context.Background(), 1, 10, "relevance")
			return err
		},
		"GenerateDeeplink": func() error {
			_, err := client.GenerateDeeplink(context.Background(), DeeplinkRequest{OfferID: 1, URL: "https://x"})
			return err
		},
	}

	for name, operation := range operations {
		t.Run(name, func(t *testing.T) {
			authenticate(t, client)
			if err := operation(); !errors.Is(err, ErrSessionExpired) {
				t.Fatalf("error = %v, want ErrSessionExpired", err)
			}
			if client.IsAuthenticated() {
				t.Error("expected the session to be cleared")
			}
			if err := operation(); !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("second call error = %v, want ErrNotAuthenticated", err)
			}
		})
	}
}

func TestClient_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"server error", http.StatusServiceUnavailable, `maintenance`, ""},
		{"server error with envelope", http.StatusBadRequest, `{"status":"error","message":"limit too large"}`, "limit too large"},
		{"logical failure", http.StatusOK, `{"status":"error","message":"Offer not found"}`, "Offer not found"},
		{"logical failure without message", http.StatusOK, `{"status":"failed"}`, "Failed to fetch offers"},
		{"invalid JSON", http.StatusOK, `<html>`, "invalid JSON response"},
		{"data of the wrong type", http.StatusOK, `{"status":"success","data":{"page":"1","limit":10,"data":[]}}`, "unexpected response data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := newFakeUpstream(t, map[string]func() (int, string){
				"/authenticate": respond(http.StatusOK, authSuccess),
				"/offers/all":   respond(tt.status, tt.body),
			})
			client := newTestClient(upstream, DirectMode{})
			authenticate(t, client)

			_, err := client.ListOffers(context.Background(), 1, 10, "")
			var upstreamErr *UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("expected *UpstreamError, got %v", err)
			}
			if upstreamErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", upstreamErr.StatusCode, tt.status)
			}
			if string(upstreamErr.Body) != tt.body {
				t.Errorf("Body = %q, want %q", upstreamErr.Body, tt.body)
			}
			if upstreamErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", upstreamErr.Message, tt.wantMessage)
			}
			if !client.IsAuthenticated() {
				t.Error("expected the session to survive non-401 failures")
			}
		})
	}
}

func TestClient_GenerateDeeplink(t *testing.T) {
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/authenticate":      respond(http.StatusOK, authSuccess),
		"/deeplink/generate": respond(http.StatusOK, deeplinkOK),
	})
	client := newTestClient(upstream, DirectMode{})
	authenticate(t, client)

	result, err := client.GenerateDeeplink(context.Background(), DeeplinkRequest{
		OfferID: 42,
		URL:     "https://shop.example/p?id=1",
		AffSubs: AffSubs{AffSub: "a", AffSub2: " ", AffSub3: "c"},
	})
	if err != nil {
		t.Fatalf("GenerateDeeplink() error = %v", err)
	}
	if result.TrackingLink != "https://invol.co/abc" || result.OfferID != 42 {
		t.Errorf("unexpected result: %+v", result)
	}

	call := upstream.LastCall(t)
	want := "offer_id=42&url=https%3A%2F%2Fshop.example%2Fp%3Fid%3D1&aff_sub=a&aff_sub3=c"
	if call.Body != want {
		t.Errorf("body = %q, want %q", call.Body, want)
	}
	if call.Authorization != "Bearer T" {
		t.Errorf("Authorization = %q", call.Authorization)
	}
}

func TestClient_GatewayMode(t *testing.T) {
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/authenticate":      respond(http.StatusOK, authSuccess),
		"/deeplink/generate": respond(http.StatusOK, deeplinkOK),
	})
	client := newTestClient(upstream, GatewayMode{Credential: "anon-key"})

	authenticate(t, client)
	call := upstream.LastCall(t)
	if call.Authorization != "Bearer anon-key" {
		t.Errorf("authenticate Authorization = %q", call.Authorization)
	}
	if call.ContentType != "application/json" {
		t.Errorf("Content-Type = %q", call.ContentType)
	}
	if call.Body != `{"key":"k","secret":"s"}` {
		t.Errorf("body = %q", call.Body)
	}

	if _, err := client.GenerateDeeplink(context.Background(), DeeplinkRequest{OfferID: 5, URL: "https://x"}); err != nil {
		t.Fatalf("GenerateDeeplink() error = %v", err)
	}
	call = upstream.LastCall(t)
	if call.Authorization != "Bearer anon-key" {
		t.Errorf("the gateway credential must replace the session token, got %q", call.Authorization)
	}
	if call.Body != `{"offer_id":5,"url":"https://x"}` {
		t.Errorf("body = %q", call.Body)
	}
}

func TestClient_Logout(t *testing.T) {
	upstream := newFakeUpstream(t, map[string]func() (int, string){
		"/authenticate": respond(http.StatusOK, authSuccess),
	})
	client := newTestClient(upstream, DirectMode{})

	client.Logout()
	authenticate(t, client)
	client.Logout()
	client.Logout()
	if client.IsAuthenticated() {
		t.Error("expected client to be logged out")
	}
}

func TestClient_NetworkError(t *testing.T) {
	upstream := newFakeUpstream(t, nil)
	client := newTestClient(upstream, DirectMode{})
	upstream.Close()

	_, err := client.Authenticate(context.Background(), "k", "s")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if client.IsAuthenticated() {
		t.Error("expected client to stay unauthenticated")
	}
}

func TestCaller_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	caller := NewCaller(CallerOptions{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := caller.Do(context.Background(), Call{Path: "/offers/all", ContentType: contentTypeForm})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if !netErr.Timeout() {
		t.Errorf("expected a timeout, got %v", netErr.Err)
	}
}
