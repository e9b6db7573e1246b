package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow(CapabilityEmbedding) {
			t.Fatalf("request %d within burst denied", i)
		}
	}
	if l.Allow(CapabilityEmbedding) {
		t.Error("request beyond burst allowed")
	}
}

func TestLimiterCapabilitiesAreIndependent(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow(CapabilityEmbedding) {
		t.Fatal("first embedding request denied")
	}
	if l.Allow(CapabilityEmbedding) {
		t.Fatal("embedding burst not exhausted")
	}
	// Draining the embedding budget must not touch the judge budget
	if !l.Allow(CapabilityJudge) {
		t.Error("judge request denied after embedding burst")
	}
}

func TestLimiterSetRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetRate(CapabilityJudge, 100, 50)

	for i := 0; i < 50; i++ {
		if !l.Allow(CapabilityJudge) {
			t.Fatalf("request %d denied under raised burst", i)
		}
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	if err := l.Wait(context.Background(), CapabilityJudge); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, CapabilityJudge); err == nil {
		t.Error("expected context error while rate limited")
	}
}
