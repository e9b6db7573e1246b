package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/model"
)

func newTestStore(t *testing.T) *ClaimStore {
	t.Helper()
	s, err := NewClaimStore(filepath.Join(t.TempDir(), "claims.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewClaimStore failed: %v", err)
	}
	return s
}

func TestCreateAndGetClaim(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateClaim("batch correction improves prediction", model.CategoryResult)
	if err != nil {
		t.Fatalf("CreateClaim failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created claim has no ID")
	}

	got, err := s.GetClaim(created.ID)
	if err != nil {
		t.Fatalf("GetClaim failed: %v", err)
	}
	if got.Text != created.Text || got.Category != model.CategoryResult {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestCreateClaimRejectsEmptyText(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateClaim("   ", model.CategoryResult); err == nil {
		t.Error("expected validation error for blank text")
	}
}

func TestGetClaimNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetClaim("nope")
	if !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("expected ErrClaimNotFound, got %v", err)
	}
}

func TestGetClaimReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryBackground)

	got, _ := s.GetClaim(created.ID)
	got.Text = "mutated"
	got.SupportingQuotes = append(got.SupportingQuotes, model.Quote{Text: "smuggled"})

	fresh, _ := s.GetClaim(created.ID)
	if fresh.Text != "a claim" || len(fresh.SupportingQuotes) != 0 {
		t.Error("mutating a returned claim changed stored state")
	}
}

func TestUpdateClaim(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryResult)

	updated, err := s.UpdateClaim(created.ID, func(c *model.Claim) error {
		c.SupportingQuotes = append(c.SupportingQuotes, model.Quote{
			Text: "supporting excerpt", Confidence: 0.95, Verified: true,
		})
		c.RecomputeVerified()
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateClaim failed: %v", err)
	}
	if !updated.Verified || len(updated.SupportingQuotes) != 1 {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestUpdateClaimErrorDiscardsChanges(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryResult)

	_, err := s.UpdateClaim(created.ID, func(c *model.Claim) error {
		c.Text = "should not stick"
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected error from mutate callback")
	}

	got, _ := s.GetClaim(created.ID)
	if got.Text != "a claim" {
		t.Error("failed update leaked into the store")
	}
}

func TestUpdateClaimCannotRekey(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryResult)

	updated, err := s.UpdateClaim(created.ID, func(c *model.Claim) error {
		c.ID = "hijacked"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateClaim failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("record was re-keyed to %s", updated.ID)
	}
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryResult)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateClaim(created.ID, func(c *model.Claim) error {
				c.SupportingQuotes = append(c.SupportingQuotes, model.Quote{Text: "q"})
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.GetClaim(created.ID)
	if len(got.SupportingQuotes) != writers {
		t.Errorf("expected %d quotes after serialized updates, got %d",
			writers, len(got.SupportingQuotes))
	}
}

func TestDeleteClaim(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateClaim("a claim", model.CategoryResult)

	if err := s.DeleteClaim(created.ID); err != nil {
		t.Fatalf("DeleteClaim failed: %v", err)
	}
	if _, err := s.GetClaim(created.ID); !errors.Is(err, ErrClaimNotFound) {
		t.Error("claim still readable after delete")
	}
	if err := s.DeleteClaim(created.ID); !errors.Is(err, ErrClaimNotFound) {
		t.Errorf("second delete error = %v, want ErrClaimNotFound", err)
	}
}

func TestClaimsPersistAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.json")

	first, err := NewClaimStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClaimStore failed: %v", err)
	}
	created, _ := first.CreateClaim("a persisted claim", model.CategoryMethod)

	second, err := NewClaimStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := second.GetClaim(created.ID)
	if err != nil {
		t.Fatalf("GetClaim after reload failed: %v", err)
	}
	if got.Text != "a persisted claim" || got.Category != model.CategoryMethod {
		t.Errorf("reloaded claim mismatch: %+v", got)
	}
}

func TestListClaimsOrderedByID(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.CreateClaim("claim", model.CategoryResult); err != nil {
			t.Fatalf("CreateClaim failed: %v", err)
		}
	}

	list := s.ListClaims()
	if len(list) != 5 {
		t.Fatalf("expected 5 claims, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatal("ListClaims is not ordered by ID")
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	kv := NewKV(t.TempDir())

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var missing doc
	found, err := kv.Get("absent", &missing)
	if err != nil || found {
		t.Fatalf("Get absent = (%v, %v)", found, err)
	}

	if err := kv.Put("present", doc{Name: "x", Count: 3}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	var got doc
	found, err = kv.Get("present", &got)
	if err != nil || !found || got.Name != "x" || got.Count != 3 {
		t.Fatalf("Get present = (%+v, %v, %v)", got, found, err)
	}

	if err := kv.Delete("present"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := kv.Delete("present"); err != nil {
		t.Errorf("deleting a missing key should be a no-op, got %v", err)
	}
}
