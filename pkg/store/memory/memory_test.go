package memory_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/store"
	"github.com/goliatone/go-fieldblocks/pkg/store/memory"
)

func TestStore_SaveRecordsSingleWrite(t *testing.T) {
	s := memory.New(nil)
	ctx := context.Background()

	if err := s.Save(ctx, "42", map[string]any{"a": 1, "b": 2}); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := []memory.Write{{OwnerID: "42", Values: map[string]any{"a": 1, "b": 2}}}
	if diff := cmp.Diff(want, s.Writes()); diff != "" {
		t.Fatalf("writes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, s.Keys("42")); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FallsBackToGet(t *testing.T) {
	s := memory.New(map[string]map[string]any{"7": {"headline": "Hi"}})

	got, err := store.Load(context.Background(), s, "7", []string{"headline", "missing"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"headline": "Hi"}, got); diff != "" {
		t.Fatalf("load mismatch (-want +got):\n%s", diff)
	}
	if s.Reads() != 2 {
		t.Fatalf("expected 2 reads, got %d", s.Reads())
	}
}
