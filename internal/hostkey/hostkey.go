// Package hostkey derives the registered-domain learning key the Strategy
// Registry uses to remember a host's preferred backend.
package hostkey

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// Derive computes the HostKey for rawURL: its lowercase registered domain
// (eTLD+1). Every subdomain collapses onto its registered domain:
// "www.example.com" and "docs.example.com" both map to "example.com", and
// "www.example.co.uk" maps to "example.co.uk".
func Derive(rawURL string) (domain.HostKey, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", domain.ErrInvalidArgument
	}

	registered, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// IP literals and single-label hosts (e.g. "localhost") have no
		// public suffix; fall back to the bare host.
		return domain.HostKey(host), nil
	}

	return domain.HostKey(registered), nil
}
