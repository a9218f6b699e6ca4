package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadDraftTTLFallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("DRAFT_TTL_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.DraftTTLMinutes != 240 {
		t.Fatalf("expected fallback draft ttl 240, got %d", cfg.DraftTTLMinutes)
	}
}

func TestLoadDraftCapacity(t *testing.T) {
	t.Setenv("DRAFT_CAPACITY", "")
	if got := Load().DraftCapacity; got != 5 {
		t.Fatalf("expected default draft capacity 5, got %d", got)
	}

	t.Setenv("DRAFT_CAPACITY", "8")
	if got := Load().DraftCapacity; got != 8 {
		t.Fatalf("expected draft capacity 8, got %d", got)
	}

	t.Setenv("DRAFT_CAPACITY", "-3")
	if got := Load().DraftCapacity; got != 5 {
		t.Fatalf("expected fallback draft capacity 5 on invalid value, got %d", got)
	}
}
