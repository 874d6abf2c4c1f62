package auth

import (
	"fmt"
	"strings"

	"studio/internal/domain"
)

// Provider is an OAuth provider the identity backend can federate with.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderTwitter  Provider = "twitter"
)

// ProviderInfo describes a sign-in option offered to clients.
type ProviderInfo struct {
	ID    Provider `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

// Providers lists the supported providers in display order. Instagram is
// absent because the identity backend cannot federate with it.
var Providers = []ProviderInfo{
	{ID: ProviderGoogle, Name: "Google", Color: "#4285F4"},
	{ID: ProviderFacebook, Name: "Facebook", Color: "#1877F2"},
	{ID: ProviderTwitter, Name: "Twitter", Color: "#1DA1F2"},
}

// ParseProvider resolves a provider id.
func ParseProvider(id string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(id)))
	for _, info := range Providers {
		if info.ID == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, id)
}

// authorizeParams returns provider specific query parameters.
func (p Provider) authorizeParams() map[string]string {
	if p == ProviderGoogle {
		return map[string]string{"access_type": "offline", "prompt": "consent"}
	}
	return nil
}
