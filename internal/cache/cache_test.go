package cache

import (
	"strings"
	"testing"
	"time"
)

func TestValidationKeyNormalization(t *testing.T) {
	base := ValidationKey("Batch correction improves prediction")

	tests := []struct {
		name      string
		text      string
		wantEqual bool
	}{
		{"identical text", "Batch correction improves prediction", true},
		{"case insensitive", "batch CORRECTION improves Prediction", true},
		{"whitespace collapsed", "  Batch   correction\timproves \n prediction ", true},
		{"different wording", "Batch correction degrades prediction", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidationKey(tt.text)
			if (got == base) != tt.wantEqual {
				t.Errorf("ValidationKey(%q) == base: %v, want %v", tt.text, got == base, tt.wantEqual)
			}
		})
	}
}

func TestValidationKeyPrefix(t *testing.T) {
	key := ValidationKey("some claim")
	if !strings.HasPrefix(key, "citewell:validation:v1:") {
		t.Errorf("unexpected key format: %s", key)
	}
}

func TestEmbeddingKeyDistinguishesModel(t *testing.T) {
	a := EmbeddingKey("text-embedding-3-small", "hello")
	b := EmbeddingKey("text-embedding-3-large", "hello")
	if a == b {
		t.Error("different models should produce different embedding keys")
	}
	if a != EmbeddingKey("text-embedding-3-small", "hello") {
		t.Error("embedding keys are not deterministic")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("Get = (%q, %v), want (\"v\", true)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := ValidationKey("a claim under test")
	if err := c.Set(key, []byte(`{"supported":true}`), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get(key)
	if !found || string(val) != `{"supported":true}` {
		t.Errorf("Get = (%q, %v)", val, found)
	}
}

func TestLayeredCachePromotion(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh layered cache over the same disk dir has a cold memory
	// layer; the value must come back from disk.
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := second.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Get through cold memory layer = (%q, %v)", val, found)
	}
}
