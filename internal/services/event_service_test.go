package services

import (
	"testing"
	"time"
)

func TestEventFeedAndPrune(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)

	for _, msg := range []string{"one", "two", "three"} {
		if err := events.CreateEvent("room.create", "info", msg, nil); err != nil {
			t.Fatalf("CreateEvent(%q): %v", msg, err)
		}
	}

	recent, err := events.GetRecentEvents(2)
	if err != nil {
		t.Fatalf("GetRecentEvents: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("GetRecentEvents(2) returned %d events, want 2", len(recent))
	}

	// Nothing is older than a day yet.
	removed, err := events.PruneBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if removed != 0 {
		t.Errorf("PruneBefore removed %d recent events, want 0", removed)
	}

	// A future cutoff removes everything.
	removed, err = events.PruneBefore(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if removed != 3 {
		t.Errorf("PruneBefore removed %d events, want 3", removed)
	}
}
