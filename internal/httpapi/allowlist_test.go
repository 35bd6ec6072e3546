package httpapi

import "testing"

func TestAllowlistContains(t *testing.T) {
	a := NewAllowlist([]string{"k1", "k2"})
	if !a.Contains("k1") {
		t.Error("expected k1 to be allowed")
	}
	if a.Contains("k3") {
		t.Error("did not expect k3 to be allowed")
	}
}

func TestAllowlistReplaceIsWholesale(t *testing.T) {
	a := NewAllowlist([]string{"k1"})
	a.Replace([]string{"k2"})

	if a.Contains("k1") {
		t.Error("k1 should no longer be allowed after Replace")
	}
	if !a.Contains("k2") {
		t.Error("k2 should be allowed after Replace")
	}
}

func TestAllowlistEmpty(t *testing.T) {
	a := NewAllowlist(nil)
	if a.Contains("anything") {
		t.Error("an empty allowlist should reject everything")
	}
}
