package ident

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"auditportal/internal/kv"
	"auditportal/pkg/domain"

	"go.uber.org/zap"
)

// Scoped is the scope and assigned code of one existing record.
type Scoped struct {
	Scope string
	Code  string
}

// highWater is the persisted layout of the sequences key:
// collection -> scope -> highest ordinal ever reserved.
type highWater map[string]map[string]int

// ScopedSequence numbers records per scope (for example per district). The
// next ordinal is the largest of: the count of records in scope plus one,
// the highest ordinal parsed from their codes plus one, and the persisted
// high-water mark plus one. Everything is recomputed on every call, so
// deletions leave gaps instead of being backfilled.
type ScopedSequence struct {
	Collection domain.CollectionKey
	Store      kv.Store
	// Separator joins scope and ordinal; defaults to "-".
	Separator string
	// Width zero-pads the ordinal when positive.
	Width  int
	Logger *zap.Logger

	mu sync.Mutex
}

func (s *ScopedSequence) sep() string {
	if s.Separator == "" {
		return "-"
	}
	return s.Separator
}

func (s *ScopedSequence) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Format renders scope and ordinal as a code.
func (s *ScopedSequence) Format(scope string, ordinal int) string {
	if s.Width > 0 {
		return fmt.Sprintf("%s%s%0*d", scope, s.sep(), s.Width, ordinal)
	}
	return scope + s.sep() + strconv.Itoa(ordinal)
}

// Ordinal parses the ordinal out of a code issued for scope.
func (s *ScopedSequence) Ordinal(scope, code string) (int, bool) {
	rest, ok := strings.CutPrefix(code, scope+s.sep())
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Peek returns the code the next Reserve would assign without recording it.
func (s *ScopedSequence) Peek(ctx context.Context, scope string, records []Scoped) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	hw := s.load(ctx)
	return s.Format(scope, s.next(hw, scope, records))
}

// Reserve assigns the next code for scope and persists the new high-water
// mark. A persistence failure is logged; the code is still returned.
func (s *ScopedSequence) Reserve(ctx context.Context, scope string, records []Scoped) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	hw := s.load(ctx)
	n := s.next(hw, scope, records)
	coll := string(s.Collection)
	if hw[coll] == nil {
		hw[coll] = make(map[string]int)
	}
	hw[coll][scope] = n
	s.save(ctx, hw)
	return s.Format(scope, n)
}

func (s *ScopedSequence) next(hw highWater, scope string, records []Scoped) int {
	count, top := 0, 0
	for _, r := range records {
		if r.Scope != scope {
			continue
		}
		count++
		if n, ok := s.Ordinal(scope, r.Code); ok && n > top {
			top = n
		}
	}
	next := count + 1
	if top+1 > next {
		next = top + 1
	}
	if mark := hw[string(s.Collection)][scope]; mark+1 > next {
		next = mark + 1
	}
	return next
}

func (s *ScopedSequence) load(ctx context.Context) highWater {
	hw := highWater{}
	if s.Store == nil {
		return hw
	}
	raw, ok, err := s.Store.Get(ctx, string(domain.CollectionSequences))
	if err != nil {
		s.logger().Error("read sequence state", zap.String("collection", string(s.Collection)), zap.Error(err))
		return hw
	}
	if !ok || len(raw) == 0 {
		return hw
	}
	if err := json.Unmarshal(raw, &hw); err != nil {
		s.logger().Warn("discard malformed sequence state", zap.Error(err))
		return highWater{}
	}
	if hw == nil {
		hw = highWater{}
	}
	return hw
}

func (s *ScopedSequence) save(ctx context.Context, hw highWater) {
	if s.Store == nil {
		return
	}
	data, err := json.Marshal(hw)
	if err != nil {
		s.logger().Error("encode sequence state", zap.Error(err))
		return
	}
	if err := s.Store.Set(ctx, string(domain.CollectionSequences), data); err != nil {
		s.logger().Error("persist sequence state", zap.String("collection", string(s.Collection)), zap.Error(err))
	}
}
