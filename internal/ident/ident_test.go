package ident

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"auditportal/internal/kv"
	"auditportal/pkg/domain"
)

func TestSequentialNeverReusesAfterDelete(t *testing.T) {
	var p Sequential
	if got := p.Next(nil); got != 1 {
		t.Fatalf("expected 1 for empty collection, got %d", got)
	}
	if got := p.Next([]int64{1, 7, 3}); got != 8 {
		t.Fatalf("expected max+1=8, got %d", got)
	}
	// id 8 was deleted before the next add.
	if got := p.Next([]int64{1, 7, 3}); got != 9 {
		t.Fatalf("expected 9 after deleting the newest record, got %d", got)
	}
}

func TestTimestampStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	p := Timestamp{Now: func() time.Time { return fixed }}
	a := p.Next(nil)
	b := p.Next([]int64{a})
	c := p.Next([]int64{a, b, 1_800_000_000_000})
	if a != fixed.UnixMilli() || b != a+1 || c != 1_800_000_000_001 {
		t.Fatalf("unexpected ids %d %d %d", a, b, c)
	}
}

func TestCodeGeneratorShape(t *testing.T) {
	g := CodeGenerator{Prefix: "GRV", Length: 8}
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !strings.HasPrefix(code, "GRV") || len(code) != 11 {
			t.Fatalf("unexpected code %q", code)
		}
		for _, r := range code[3:] {
			if !strings.ContainsRune(Alphanumeric, r) {
				t.Fatalf("character %q outside alphabet in %q", r, code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 45 {
		t.Fatalf("expected mostly distinct codes, got %d distinct of 50", len(seen))
	}
}

func TestCodeGeneratorDeterministicSource(t *testing.T) {
	g := CodeGenerator{Prefix: "EMP", Length: 4, Alphabet: "AB", Rand: bytes.NewReader(make([]byte, 64))}
	code, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code != "EMPAAAA" {
		t.Fatalf("expected zero source to pick first symbol, got %q", code)
	}
	if _, err := (CodeGenerator{Length: 0}).Generate(); err == nil {
		t.Fatalf("expected error for zero length")
	}
	if _, err := (CodeGenerator{Length: 3, Rand: bytes.NewReader(nil)}).Generate(); err == nil {
		t.Fatalf("expected error from exhausted source")
	}
}

func TestScopedSequenceExample(t *testing.T) {
	ctx := context.Background()
	seq := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: kv.NewMemory()}

	var records []Scoped
	if got := seq.Peek(ctx, "Chennai", records); got != "Chennai-1" {
		t.Fatalf("expected Chennai-1, got %s", got)
	}
	code := seq.Reserve(ctx, "Chennai", records)
	records = append(records, Scoped{Scope: "Chennai", Code: code})
	if got := seq.Peek(ctx, "Chennai", records); got != "Chennai-2" {
		t.Fatalf("expected Chennai-2, got %s", got)
	}
	records = nil // the case study is deleted
	if got := seq.Peek(ctx, "Chennai", records); got != "Chennai-2" {
		t.Fatalf("expected no gap filling after delete, got %s", got)
	}
	if got := seq.Peek(ctx, "Madurai", records); got != "Madurai-1" {
		t.Fatalf("scopes must be independent, got %s", got)
	}
}

func TestScopedSequenceMonotonic(t *testing.T) {
	ctx := context.Background()
	seq := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: kv.NewMemory()}
	prev := 0
	for i := 0; i < 10; i++ {
		code := seq.Reserve(ctx, "Salem", nil)
		n, ok := seq.Ordinal("Salem", code)
		if !ok || n <= prev {
			t.Fatalf("expected increasing ordinal after %d, got %s", prev, code)
		}
		prev = n
	}
}

func TestScopedSequenceUsesExistingCodesAndPadding(t *testing.T) {
	ctx := context.Background()
	seq := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: kv.NewMemory(), Separator: "/", Width: 3}
	records := []Scoped{{Scope: "Erode", Code: "Erode/005"}, {Scope: "Erode", Code: "junk"}}
	if got := seq.Peek(ctx, "Erode", records); got != "Erode/006" {
		t.Fatalf("expected Erode/006, got %s", got)
	}
	if _, ok := seq.Ordinal("Erode", "Erode/abc"); ok {
		t.Fatalf("non-numeric ordinal must not parse")
	}
}

func TestScopedSequenceSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	a := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: store}
	b := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: store}
	if got := a.Reserve(ctx, "Chennai", nil); got != "Chennai-1" {
		t.Fatalf("unexpected first code %s", got)
	}
	if got := b.Peek(ctx, "Chennai", nil); got != "Chennai-2" {
		t.Fatalf("second instance must see persisted high-water, got %s", got)
	}
}

func TestScopedSequenceToleratesCorruptState(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	_ = store.Set(ctx, string(domain.CollectionSequences), []byte("{not json"))
	seq := &ScopedSequence{Collection: domain.CollectionCaseStudies, Store: store}
	if got := seq.Reserve(ctx, "Chennai", nil); got != "Chennai-1" {
		t.Fatalf("expected fresh sequence from corrupt state, got %s", got)
	}
	_ = store.Set(ctx, string(domain.CollectionSequences), []byte("null"))
	if got := seq.Reserve(ctx, "Chennai", nil); got != "Chennai-1" {
		t.Fatalf("expected fresh sequence from null state, got %s", got)
	}
}
