package services

import (
	"testing"
	"time"

	"livescore-service/models"
)

func TestEnrichCacheHit(t *testing.T) {
	cache := NewReferenceCache(singlePageAPI(), time.Hour)
	cache.EnsureLoaded(models.KindTeam)
	e := NewEnricher(cache)

	got := e.Enrich(models.KindTeam, "t1")
	if got == nil {
		t.Fatal("expected enriched entity")
	}
	if got.Name != "Arsenal" || got.ShortName != "ARS" {
		t.Errorf("unexpected enrichment: %+v", got)
	}
	if got.Placeholder {
		t.Error("cache hit must not be a placeholder")
	}

	// Missing short name falls back to the full name.
	got = e.Enrich(models.KindTeam, "t2")
	if got.ShortName != "Chelsea" {
		t.Errorf("expected short name fallback, got %q", got.ShortName)
	}
}

func TestEnrichCacheMissYieldsPlaceholder(t *testing.T) {
	cache := NewReferenceCache(singlePageAPI(), time.Hour)
	e := NewEnricher(cache)

	got := e.Enrich(models.KindTeam, "team-8xk2")
	if got == nil {
		t.Fatal("expected placeholder entity")
	}
	if !got.Placeholder {
		t.Error("cache miss must be marked as placeholder")
	}
	if got.Name != "Team 8XK2" {
		t.Errorf("expected deterministic placeholder name, got %q", got.Name)
	}
	if got.ShortName != "8XK2" {
		t.Errorf("expected short label 8XK2, got %q", got.ShortName)
	}

	// Deterministic: same miss, same placeholder.
	again := e.Enrich(models.KindTeam, "team-8xk2")
	if again.Name != got.Name || again.ShortName != got.ShortName {
		t.Errorf("placeholder not deterministic: %+v vs %+v", got, again)
	}
}

func TestEnrichEmptyID(t *testing.T) {
	e := NewEnricher(NewReferenceCache(singlePageAPI(), time.Hour))
	if got := e.Enrich(models.KindTeam, ""); got != nil {
		t.Errorf("expected nil for empty id, got %+v", got)
	}
}

func TestShortLabel(t *testing.T) {
	cases := map[string]string{
		"team-8xk2": "8XK2",
		"ab":        "AB",
		"1234":      "1234",
		"x12345":    "2345",
	}
	for id, want := range cases {
		if got := ShortLabel(id); got != want {
			t.Errorf("ShortLabel(%q) = %q, want %q", id, got, want)
		}
	}
}
