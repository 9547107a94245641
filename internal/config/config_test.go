package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	config, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if config.ProxyMountPrefix != "/api" {
		t.Errorf("ProxyMountPrefix = %q", config.ProxyMountPrefix)
	}
	if config.UpstreamBaseURL != "https://api.involve.asia" {
		t.Errorf("UpstreamBaseURL = %q", config.UpstreamBaseURL)
	}
	if config.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %s", config.UpstreamTimeout)
	}
	wantOrigins := []string{"http://localhost:5173", "https://localhost:5173"}
	if !reflect.DeepEqual(config.ProxyAllowedOrigins, wantOrigins) {
		t.Errorf("ProxyAllowedOrigins = %v", config.ProxyAllowedOrigins)
	}
	if !reflect.DeepEqual(config.EffectivePortalAllowedOrigins(), wantOrigins) {
		t.Errorf("EffectivePortalAllowedOrigins() = %v", config.EffectivePortalAllowedOrigins())
	}
	if config.EffectiveClientBaseURL() != config.UpstreamBaseURL {
		t.Errorf("EffectiveClientBaseURL() = %q", config.EffectiveClientBaseURL())
	}
	mode, err := config.Mode()
	if err != nil || mode.Name() != "direct" {
		t.Errorf("Mode() = %v, %v", mode, err)
	}
	if config.IsEnvProduction() {
		t.Error("expected development environment by default")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DP_ENVIRONMENT", "Production")
	t.Setenv("DP_PROXY_MOUNT_PREFIX", "/functions/v1/involve-asia-proxy/")
	t.Setenv("DP_CLIENT_MODE", "gateway")
	t.Setenv("DP_CLIENT_GATEWAY_CREDENTIAL", "anon")
	t.Setenv("DP_CLIENT_BASE_URL", "https://gateway.example/functions/v1/involve-asia-proxy")
	t.Setenv("DP_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("DP_PORTAL_ALLOWED_ORIGINS", "https://app.example")

	config, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if !config.IsEnvProduction() {
		t.Error("expected production environment")
	}
	if config.ProxyMountPrefix != "/functions/v1/involve-asia-proxy" {
		t.Errorf("ProxyMountPrefix = %q", config.ProxyMountPrefix)
	}
	if config.UpstreamTimeout != 5*time.Second {
		t.Errorf("UpstreamTimeout = %s", config.UpstreamTimeout)
	}
	if config.EffectiveClientBaseURL() != "https://gateway.example/functions/v1/involve-asia-proxy" {
		t.Errorf("EffectiveClientBaseURL() = %q", config.EffectiveClientBaseURL())
	}
	if got := config.EffectivePortalAllowedOrigins(); !reflect.DeepEqual(got, []string{"https://app.example"}) {
		t.Errorf("EffectivePortalAllowedOrigins() = %v", got)
	}
	mode, err := config.Mode()
	if err != nil || mode.Name() != "gateway" {
		t.Errorf("Mode() = %v, %v", mode, err)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"gateway without credential": {"DP_CLIENT_MODE": "gateway"},
		"unknown mode":               {"DP_CLIENT_MODE": "tunnel"},
		"relative mount prefix":      {"DP_PROXY_MOUNT_PREFIX": "api"},
		"root mount prefix":          {"DP_PROXY_MOUNT_PREFIX": "/"},
		"zero timeout":               {"DP_UPSTREAM_TIMEOUT": "0s"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			if _, err := LoadFromEnv(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
