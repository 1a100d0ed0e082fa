package middleware

import "testing"

func TestIdempotencyCacheKeyScopedByOrganization(t *testing.T) {
	a := idempotencyCacheKey("org-1", "abc")
	b := idempotencyCacheKey("org-2", "abc")

	if a == b {
		t.Fatalf("two tenants sharing key %q must not collide", "abc")
	}
	if a != "idempotency:org-1:abc" {
		t.Errorf("unexpected key %q", a)
	}

	// Requests without the tenant header still get a stable key.
	if got := idempotencyCacheKey("", "abc"); got != "idempotency:abc" {
		t.Errorf("unexpected unscoped key %q", got)
	}
}
