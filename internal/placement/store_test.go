package placement

import (
	"errors"
	"testing"

	"printstudio/internal/domain"
)

func frontRect(designID string) domain.PlacementRect {
	return domain.PlacementRect{
		DesignID:        designID,
		PlacementKey:    "front",
		AreaWidth:       1800,
		AreaHeight:      2400,
		Width:           900,
		Height:          900,
		Top:             750,
		Left:            450,
		ConstrainToArea: true,
	}
}

func f(v float64) *float64 { return &v }

func TestUpsertAndGet(t *testing.T) {
	s := NewStore()
	stored, err := s.Upsert(frontRect("d1"))
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	got, ok := s.Get("d1", "front")
	if !ok {
		t.Fatal("Get() expected rect to exist")
	}
	if got != stored {
		t.Fatalf("Get() = %+v, want %+v", got, stored)
	}
}

func TestUpsertRequiresKeys(t *testing.T) {
	s := NewStore()
	rect := frontRect("d1")
	rect.DesignID = ""
	if _, err := s.Upsert(rect); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("Upsert() error = %v, want ErrInvariantViolation", err)
	}
}

func TestUpsertRejectsNonPositiveSize(t *testing.T) {
	s := NewStore()
	rect := frontRect("d1")
	rect.Width = 0
	if _, err := s.Upsert(rect); !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("Upsert() error = %v, want ErrInvariantViolation", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after rejected upsert", s.Len())
	}
}

func TestUpdateClampsOverflow(t *testing.T) {
	s := NewStore()
	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	// Push the rect past the right and bottom edges.
	got, err := s.Update("d1", "front", domain.RectPatch{Left: f(1500), Top: f(2000)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Left+got.Width > got.AreaWidth || got.Top+got.Height > got.AreaHeight {
		t.Fatalf("Update() stored out-of-bounds rect: %+v", got)
	}
	if got.Left != 900 || got.Top != 1500 {
		t.Fatalf("Update() = left %v top %v, want clamped to 900/1500", got.Left, got.Top)
	}
}

func TestUpdateClampsNegativeOffsets(t *testing.T) {
	s := NewStore()
	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	got, err := s.Update("d1", "front", domain.RectPatch{Left: f(-50), Top: f(-10)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Left != 0 || got.Top != 0 {
		t.Fatalf("Update() = left %v top %v, want 0/0", got.Left, got.Top)
	}
}

func TestUpdateFloorsTinyResize(t *testing.T) {
	s := NewStore()
	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	got, err := s.Update("d1", "front", domain.RectPatch{Width: f(5), Height: f(2)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Width != 30 || got.Height != 30 {
		t.Fatalf("Update() = %vx%v, want floored to 30x30", got.Width, got.Height)
	}
}

func TestUpdateOversizedRectCappedToArea(t *testing.T) {
	s := NewStore()
	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	got, err := s.Update("d1", "front", domain.RectPatch{Width: f(5000), Height: f(9000)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Width != 1800 || got.Height != 2400 || got.Left != 0 || got.Top != 0 {
		t.Fatalf("Update() = %+v, want full-area rect at origin", got)
	}
}

func TestUpdateUnknownRect(t *testing.T) {
	s := NewStore()
	if _, err := s.Update("nope", "front", domain.RectPatch{Left: f(1)}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUnconstrainedRectMayLeaveArea(t *testing.T) {
	s := NewStore()
	rect := frontRect("d1")
	rect.ConstrainToArea = false
	if _, err := s.Upsert(rect); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	got, err := s.Update("d1", "front", domain.RectPatch{Left: f(1700), Top: f(-100)})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Left != 1700 || got.Top != -100 {
		t.Fatalf("Update() = left %v top %v, want unclamped 1700/-100", got.Left, got.Top)
	}
}

func TestMultipleDesignsPerPlacement(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"d2", "d1", "d3"} {
		if _, err := s.Upsert(frontRect(id)); err != nil {
			t.Fatalf("Upsert(%s) unexpected error: %v", id, err)
		}
	}
	back := frontRect("d1")
	back.PlacementKey = "back"
	if _, err := s.Upsert(back); err != nil {
		t.Fatalf("Upsert(back) unexpected error: %v", err)
	}

	front := s.ListByPlacement("front")
	if len(front) != 3 {
		t.Fatalf("ListByPlacement(front) returned %d rects, want 3", len(front))
	}
	if front[0].DesignID != "d1" || front[1].DesignID != "d2" || front[2].DesignID != "d3" {
		t.Fatalf("ListByPlacement(front) order = %v", front)
	}
	if all := s.ListAll(); len(all) != 4 {
		t.Fatalf("ListAll() returned %d rects, want 4", len(all))
	}
}

func TestRemoveAndClearPlacement(t *testing.T) {
	s := NewStore()
	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if _, err := s.Upsert(frontRect("d2")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if !s.Remove("d1", "front") {
		t.Fatal("Remove() = false, want true")
	}
	if s.Remove("d1", "front") {
		t.Fatal("Remove() second call = true, want false")
	}
	if n := s.ClearPlacement("front"); n != 1 {
		t.Fatalf("ClearPlacement() = %d, want 1", n)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestListenersFireOnMutation(t *testing.T) {
	s := NewStore()
	fired := 0
	s.Subscribe(func() { fired++ })

	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if _, err := s.Update("d1", "front", domain.RectPatch{Left: f(10)}); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	s.Remove("d1", "front")
	s.Remove("d1", "front") // miss, no notification

	if fired != 3 {
		t.Fatalf("listener fired %d times, want 3", fired)
	}
}

func TestSubscribeCancelDetachesListener(t *testing.T) {
	s := NewStore()
	fired := 0
	cancel := s.Subscribe(func() { fired++ })

	if _, err := s.Upsert(frontRect("d1")); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	cancel()
	s.Remove("d1", "front")

	if fired != 1 {
		t.Fatalf("listener fired %d times after cancel, want 1", fired)
	}
}
