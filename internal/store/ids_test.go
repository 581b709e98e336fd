package store

import (
	"strings"
	"testing"
)

func TestNewRandomID_ApplicationIDs(t *testing.T) {
	id, err := newRandomID("app")
	if err != nil {
		t.Fatalf("newRandomID: %v", err)
	}
	if !strings.HasPrefix(id, "app-") {
		t.Fatalf("expected app prefix, got %q", id)
	}
	suffix := strings.TrimPrefix(id, "app-")
	if got, want := len(suffix), 8; got != want {
		t.Fatalf("expected id suffix len %d, got %d (%q)", want, got, suffix)
	}
	if !LooksLikeApplicationID(id) {
		t.Fatalf("LooksLikeApplicationID(%q) = false", id)
	}
}

func TestLooksLikeApplicationID(t *testing.T) {
	for _, s := range []string{"apps", "app-", "app-ABCDEFGH", "app-abc", "item-abcdefgh", "app-abcdefg1"} {
		if LooksLikeApplicationID(s) {
			t.Fatalf("LooksLikeApplicationID(%q) = true", s)
		}
	}
}
