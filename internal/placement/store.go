// Package placement holds the in-memory store of design-placement rects.
// It is the only mutable shared state in the engine: the renderer and the
// compliance orchestrator both read it, and every write funnels through
// Upsert/Update/Remove so invariants are enforced in exactly one place.
package placement

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"printstudio/internal/domain"
	"printstudio/internal/geometry"
)

type key struct {
	designID     string
	placementKey string
}

// Store is a keyed collection of placement rects. Multiple designs per
// placement are allowed; restricting to one is calling-UI policy.
type Store struct {
	mu           sync.RWMutex
	rects        map[key]domain.PlacementRect
	listeners    map[int]func()
	nextListener int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rects: make(map[key]domain.PlacementRect)}
}

// Subscribe registers fn to run after every successful mutation and
// returns a cancel func that detaches it. Listeners run outside the store
// lock and must not block.
func (s *Store) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	if s.listeners == nil {
		s.listeners = make(map[int]func())
	}
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Upsert inserts or replaces the rect, clamping it to its invariants
// first. The stored rect is returned.
func (s *Store) Upsert(rect domain.PlacementRect) (domain.PlacementRect, error) {
	if rect.DesignID == "" || rect.PlacementKey == "" {
		return domain.PlacementRect{}, fmt.Errorf("%w: design and placement required", domain.ErrInvariantViolation)
	}
	clamped, err := clamp(rect)
	if err != nil {
		return domain.PlacementRect{}, err
	}
	s.mu.Lock()
	s.rects[key{rect.DesignID, rect.PlacementKey}] = clamped
	s.mu.Unlock()
	s.notify()
	return clamped, nil
}

// Update merge-patches the rect and re-validates invariants after the
// merge. Unknown keys return ErrNotFound.
func (s *Store) Update(designID, placementKey string, patch domain.RectPatch) (domain.PlacementRect, error) {
	k := key{designID, placementKey}

	s.mu.Lock()
	current, ok := s.rects[k]
	if !ok {
		s.mu.Unlock()
		return domain.PlacementRect{}, fmt.Errorf("placement %s/%s: %w", designID, placementKey, domain.ErrNotFound)
	}
	clamped, err := clamp(patch.Apply(current))
	if err != nil {
		s.mu.Unlock()
		return domain.PlacementRect{}, err
	}
	s.rects[k] = clamped
	s.mu.Unlock()
	s.notify()
	return clamped, nil
}

// Remove deletes the rect and reports whether it existed.
func (s *Store) Remove(designID, placementKey string) bool {
	k := key{designID, placementKey}
	s.mu.Lock()
	_, ok := s.rects[k]
	if ok {
		delete(s.rects, k)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
	return ok
}

// ClearPlacement removes every design from one placement and returns how
// many were removed. Used by callers that enforce one design per placement.
func (s *Store) ClearPlacement(placementKey string) int {
	s.mu.Lock()
	removed := 0
	for k := range s.rects {
		if k.placementKey == placementKey {
			delete(s.rects, k)
			removed++
		}
	}
	s.mu.Unlock()
	if removed > 0 {
		s.notify()
	}
	return removed
}

// Get returns a copy of the rect.
func (s *Store) Get(designID, placementKey string) (domain.PlacementRect, bool) {
	s.mu.RLock()
	rect, ok := s.rects[key{designID, placementKey}]
	s.mu.RUnlock()
	return rect, ok
}

// ListByPlacement returns copies of every rect on the placement, ordered
// by design ID.
func (s *Store) ListByPlacement(placementKey string) []domain.PlacementRect {
	s.mu.RLock()
	var out []domain.PlacementRect
	for k, r := range s.rects {
		if k.placementKey == placementKey {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()
	sortRects(out)
	return out
}

// ListAll returns copies of every rect, ordered by placement then design.
func (s *Store) ListAll() []domain.PlacementRect {
	s.mu.RLock()
	out := make([]domain.PlacementRect, 0, len(s.rects))
	for _, r := range s.rects {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sortRects(out)
	return out
}

// Len returns the number of stored rects.
func (s *Store) Len() int {
	s.mu.RLock()
	n := len(s.rects)
	s.mu.RUnlock()
	return n
}

func (s *Store) notify() {
	s.mu.RLock()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func sortRects(rects []domain.PlacementRect) {
	sort.Slice(rects, func(i, j int) bool {
		if rects[i].PlacementKey != rects[j].PlacementKey {
			return rects[i].PlacementKey < rects[j].PlacementKey
		}
		return rects[i].DesignID < rects[j].DesignID
	})
}

// clamp enforces the rect invariants: finite positive size floored at the
// minimum dimension and, when constrained, the whole rect inside
// [0,areaWidth] x [0,areaHeight]. Violations that can be corrected are
// clamped; ones that cannot are rejected so an out-of-bounds rect is never
// stored.
func clamp(r domain.PlacementRect) (domain.PlacementRect, error) {
	for _, v := range []float64{r.Width, r.Height, r.Top, r.Left, r.AreaWidth, r.AreaHeight} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.PlacementRect{}, fmt.Errorf("%w: non-finite rect field", domain.ErrInvariantViolation)
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return domain.PlacementRect{}, fmt.Errorf("%w: non-positive size %vx%v", domain.ErrInvariantViolation, r.Width, r.Height)
	}

	if r.Width < geometry.MinDimension {
		r.Width = geometry.MinDimension
	}
	if r.Height < geometry.MinDimension {
		r.Height = geometry.MinDimension
	}

	if !r.ConstrainToArea {
		return r, nil
	}

	if r.AreaWidth < geometry.MinDimension || r.AreaHeight < geometry.MinDimension {
		return domain.PlacementRect{}, fmt.Errorf("%w: constrained rect with unusable area %vx%v",
			domain.ErrInvariantViolation, r.AreaWidth, r.AreaHeight)
	}
	if r.Width > r.AreaWidth {
		r.Width = r.AreaWidth
	}
	if r.Height > r.AreaHeight {
		r.Height = r.AreaHeight
	}
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Left+r.Width > r.AreaWidth {
		r.Left = r.AreaWidth - r.Width
	}
	if r.Top+r.Height > r.AreaHeight {
		r.Top = r.AreaHeight - r.Height
	}
	return r, nil
}
