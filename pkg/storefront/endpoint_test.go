package storefront

import (
	"strings"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare shop name", raw: "shop-irl-htn", want: "shop-irl-htn.myshopify.com"},
		{name: "already canonical", raw: "shop.myshopify.com", want: "shop.myshopify.com"},
		{name: "https prefix", raw: "https://shop.myshopify.com", want: "shop.myshopify.com"},
		{name: "http prefix without suffix", raw: "http://shop", want: "shop.myshopify.com"},
		{name: "trailing slash", raw: "https://shop.myshopify.com/", want: "shop.myshopify.com"},
		{name: "surrounding whitespace", raw: "  shop  ", want: "shop.myshopify.com"},
		{name: "doubled prefix", raw: "https://http://shop", want: "shop.myshopify.com"},
		{name: "mixed case suffix", raw: "Shop.MyShopify.com", want: "shop.myshopify.com"},
		{name: "upper case prefix", raw: "HTTPS://shop", want: "shop.myshopify.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDomain(tt.raw); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain_Idempotent(t *testing.T) {
	inputs := []string{
		"shop",
		"shop.myshopify.com",
		"https://shop",
		"http://shop.myshopify.com/",
		"my-store-123",
		"HTTPS://Shop.MyShopify.com/",
	}

	for _, raw := range inputs {
		once := NormalizeDomain(raw)
		twice := NormalizeDomain(once)
		if once != twice {
			t.Errorf("NormalizeDomain not idempotent for %q: %q then %q", raw, once, twice)
		}
		if !strings.HasSuffix(once, DomainSuffix) {
			t.Errorf("NormalizeDomain(%q) = %q, missing suffix", raw, once)
		}
		if strings.Count(once, DomainSuffix) != 1 {
			t.Errorf("NormalizeDomain(%q) = %q, suffix applied more than once", raw, once)
		}
		if strings.Contains(once, "://") {
			t.Errorf("NormalizeDomain(%q) = %q, protocol not stripped", raw, once)
		}
	}
}

func TestNewEndpoint(t *testing.T) {
	ep := NewEndpoint("https://shop", "secret-token", "")

	if ep.Domain != "shop.myshopify.com" {
		t.Errorf("Domain = %q", ep.Domain)
	}
	if ep.URL != "https://shop.myshopify.com/api/2023-10/graphql.json" {
		t.Errorf("URL = %q", ep.URL)
	}

	headers := ep.Headers()
	if got := headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := headers.Get(AccessTokenHeader); got != "secret-token" {
		t.Errorf("%s = %q", AccessTokenHeader, got)
	}

	// Headers returns a copy
	headers.Set(AccessTokenHeader, "changed")
	if ep.Headers().Get(AccessTokenHeader) != "secret-token" {
		t.Error("Headers() exposed internal header map")
	}
}

func TestNewEndpoint_APIVersion(t *testing.T) {
	ep := NewEndpoint("shop", "t", "2024-04")
	if ep.URL != "https://shop.myshopify.com/api/2024-04/graphql.json" {
		t.Errorf("URL = %q", ep.URL)
	}
}
