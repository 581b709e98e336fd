package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// LooksLikeApplicationID reports whether s has the shape of an id minted by this store.
func LooksLikeApplicationID(s string) bool {
	s = strings.TrimSpace(s)
	suffix, ok := strings.CutPrefix(s, "app-")
	if !ok || len(suffix) != 8 {
		return false
	}
	for _, r := range suffix {
		if !((r >= 'a' && r <= 'z') || (r >= '2' && r <= '7')) {
			return false
		}
	}
	return true
}
