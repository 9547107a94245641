package validation

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQueryNumber(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		required bool
		want     int
		wantType string
	}{
		{"default", "", false, 100, ""},
		{"given", "?limit=25", false, 25, ""},
		{"missing", "", true, 0, "validation.query.parameter.missing"},
		{"not a number", "?limit=abc", false, 0, "validation.query.parameter.invalidType"},
		{"too small", "?limit=0", false, 0, "validation.query.parameter.number.outOfRange"},
		{"too large", "?limit=1001", false, 0, "validation.query.parameter.number.outOfRange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/offers"+tt.query, nil)
			got, err := QueryNumber(request, "limit", tt.required, 100, 1, 1000)
			if tt.wantType != "" {
				if err == nil || err.Type != tt.wantType {
					t.Fatalf("QueryNumber() error = %v, want %s", err, tt.wantType)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("QueryNumber() = %d, %v, want %d", got, err, tt.want)
			}
		})
	}
}

func TestQueryString(t *testing.T) {
	request := httptest.NewRequest("GET", "/v1/offers?sort_by=%20newest%20", nil)
	if got, err := QueryString(request, "sort_by", "relevance", 32); err != nil || got != "newest" {
		t.Errorf("QueryString() = %q, %v", got, err)
	}
	if got, err := QueryString(request, "missing", "relevance", 32); err != nil || got != "relevance" {
		t.Errorf("QueryString() = %q, %v", got, err)
	}

	long := httptest.NewRequest("GET", "/v1/offers?sort_by="+strings.Repeat("x", 40), nil)
	if _, err := QueryString(long, "sort_by", "", 32); err == nil {
		t.Error("expected a length error")
	}
}
