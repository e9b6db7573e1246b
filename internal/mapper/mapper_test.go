package mapper

import (
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/avetisyan-lab/citewell/internal/store"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := New(store.NewKV(t.TempDir()), zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestLinkIsIdempotent(t *testing.T) {
	m := newTestMapper(t)

	m.LinkSentenceToClaim("S_1", "c1")
	m.LinkSentenceToClaim("S_1", "c1")
	m.LinkSentenceToClaim("S_1", "c2")

	got := m.GetClaimsForSentence("S_1")
	want := []string{"c1", "c2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetClaimsForSentence = %v, want %v", got, want)
	}
}

func TestLinkIgnoresEmptyIDs(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("", "c1")
	m.LinkSentenceToClaim("S_1", "")
	if m.MappingCount() != 0 {
		t.Errorf("expected no mappings, got %d", m.MappingCount())
	}
}

func TestUnlinkPrunesEmptyMapping(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("S_1", "c1")

	m.UnlinkSentenceFromClaim("S_1", "c1")
	if m.MappingCount() != 0 {
		t.Error("mapping with no claims should be removed, not stored empty")
	}
	if got := m.GetClaimsForSentence("S_1"); len(got) != 0 {
		t.Errorf("expected no claims, got %v", got)
	}
}

func TestUnlinkMissingPairIsANoOp(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("S_1", "c1")

	m.UnlinkSentenceFromClaim("S_1", "c9")
	m.UnlinkSentenceFromClaim("S_9", "c1")

	if got := m.GetClaimsForSentence("S_1"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("mapping disturbed by no-op unlink: %v", got)
	}
}

func TestDeleteSentenceLeavesClaimsAlone(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("S_1", "c1")
	m.LinkSentenceToClaim("S_2", "c1")

	m.DeleteSentence("S_1")

	if got := m.GetClaimsForSentence("S_1"); len(got) != 0 {
		t.Errorf("deleted sentence still mapped: %v", got)
	}
	if got := m.GetSentencesForClaim("c1"); !reflect.DeepEqual(got, []string{"S_2"}) {
		t.Errorf("claim lost its surviving sentence: %v", got)
	}
}

func TestDeleteClaimCascadesAndPrunes(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("S_1", "c1")
	m.LinkSentenceToClaim("S_1", "c2")
	m.LinkSentenceToClaim("S_2", "c2")

	m.DeleteClaim("c2")

	if got := m.GetClaimsForSentence("S_1"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("S_1 = %v, want [c1]", got)
	}
	if got := m.GetClaimsForSentence("S_2"); len(got) != 0 {
		t.Errorf("S_2 = %v, want empty", got)
	}
	if m.MappingCount() != 1 {
		t.Errorf("MappingCount = %d, want 1", m.MappingCount())
	}
}

func TestGetClaimsReturnsDefensiveCopy(t *testing.T) {
	m := newTestMapper(t)
	m.LinkSentenceToClaim("S_1", "c1")

	got := m.GetClaimsForSentence("S_1")
	got[0] = "mutated"

	if fresh := m.GetClaimsForSentence("S_1"); fresh[0] != "c1" {
		t.Error("mutating the returned slice changed stored state")
	}
}

func TestMapperPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	kv := store.NewKV(dir)

	first, err := New(kv, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first.LinkSentenceToClaim("S_1", "c1")
	first.LinkSentenceToClaim("S_2", "c1")
	first.LinkSentenceToClaim("S_2", "c2")

	second, err := New(store.NewKV(dir), zap.NewNop())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	got := second.GetSentencesForClaim("c1")
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"S_1", "S_2"}) {
		t.Errorf("reloaded sentences for c1 = %v", got)
	}
	if claims := second.GetClaimsForSentence("S_2"); !reflect.DeepEqual(claims, []string{"c1", "c2"}) {
		t.Errorf("reloaded claims for S_2 = %v", claims)
	}
}
