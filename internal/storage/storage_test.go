package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/shopdesk/internal/imagelist"
	"github.com/lehigh-university-libraries/shopdesk/internal/productform"
)

func TestCreateAndGet(t *testing.T) {
	store := New()
	session := store.Create(productform.New(productform.ModeCreate))

	if session.ID == "" {
		t.Fatal("Expected a session ID")
	}

	got, err := store.Get(session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != session.ID || got.Form.Mode != productform.ModeCreate {
		t.Errorf("Expected the stored session, got %+v", got)
	}
	if got == session {
		t.Error("Expected a copy, got the same pointer")
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateBumpsTimestampOnSuccessOnly(t *testing.T) {
	store := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	session := store.Create(productform.New(productform.ModeCreate))

	store.now = func() time.Time { return base.Add(time.Minute) }
	failed, err := store.Update(session.ID, func(s *EditSession) error {
		return s.Form.Images.SetAt(3, "x")
	})
	if !errors.Is(err, imagelist.ErrIndexOutOfRange) {
		t.Fatalf("Expected ErrIndexOutOfRange, got %v", err)
	}
	if !failed.UpdatedAt.Equal(base) {
		t.Errorf("Expected UpdatedAt unchanged, got %v", failed.UpdatedAt)
	}

	session, err = store.Update(session.ID, func(s *EditSession) error {
		s.Form.Images.Append()
		return s.Form.Images.SetAt(0, "http://a")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("Expected UpdatedAt bumped, got %v", session.UpdatedAt)
	}
	if session.Form.Images.Len() != 2 {
		t.Errorf("Expected 2 slots, got %d", session.Form.Images.Len())
	}

	if _, err := store.Update("missing", func(*EditSession) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestConcurrentImageEdits(t *testing.T) {
	store := New()
	session := store.Create(productform.New(productform.ModeCreate))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(session.ID, func(s *EditSession) error {
				s.Form.Images.Append()
				return nil
			})
		}()
	}
	wg.Wait()

	session, err := store.Get(session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Form.Images.Len() != imagelist.MaxSlots {
		t.Errorf("Expected %d slots, got %d", imagelist.MaxSlots, session.Form.Images.Len())
	}
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	store := New()
	session := store.Create(productform.New(productform.ModeCreate))

	session.Form.Title = "changed outside"
	session.Form.Images.Append()

	got, err := store.Get(session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Form.Title != "" || got.Form.Images.Len() != 0 {
		t.Errorf("Expected stored form untouched, got %+v", got.Form)
	}
}

func TestGetAllOrderAndDelete(t *testing.T) {
	store := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base.Add(time.Hour) }
	later := store.Create(productform.New(productform.ModeCreate))
	store.now = func() time.Time { return base }
	earlier := store.Create(productform.New(productform.ModeCreate))

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(all))
	}
	if all[0].ID != earlier.ID || all[1].ID != later.ID {
		t.Errorf("Expected oldest first")
	}

	if err := store.Delete(earlier.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(earlier.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if len(store.GetAll()) != 1 {
		t.Errorf("Expected 1 session left")
	}
}
