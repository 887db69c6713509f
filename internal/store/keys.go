package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/quantmind-br/scrape-go/internal/utils"
)

// urlHash derives the URL-index key component: a SHA-256 digest of the
// normalized URL, so that "http://a.com/x" and "http://a.com/x/" share one
// history the way the registered-domain HostKey collapses "www." hosts.
func urlHash(rawURL string) string {
	normalized, err := utils.NormalizeURL(rawURL)
	if err != nil {
		normalized = rawURL
	}
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}
