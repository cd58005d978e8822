package data

import (
	"context"
	"testing"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

func newTestState(t *testing.T) repo.StateRepo {
	t.Helper()
	s, err := NewStateRepo()
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendCodes_DedupAndOrder(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	added, err := s.AppendCodes(ctx, "user1", []string{"aaa", "bbb"})
	if err != nil {
		t.Fatalf("AppendCodes failed: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 added, got %d", added)
	}

	added, err = s.AppendCodes(ctx, "user1", []string{"bbb", "ccc"})
	if err != nil {
		t.Fatalf("AppendCodes failed: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 added on overlap, got %d", added)
	}

	codes, err := s.ListCodes(ctx, "user1")
	if err != nil {
		t.Fatalf("ListCodes failed: %v", err)
	}
	want := []string{"aaa", "bbb", "ccc"}
	if len(codes) != len(want) {
		t.Fatalf("Expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("Expected code %d to be %s, got %s", i, want[i], codes[i])
		}
	}
}

func TestAppendCodes_Empty(t *testing.T) {
	s := newTestState(t)

	added, err := s.AppendCodes(context.Background(), "user1", nil)
	if err != nil {
		t.Fatalf("AppendCodes failed: %v", err)
	}
	if added != 0 {
		t.Errorf("Expected 0 added for empty input, got %d", added)
	}
}

func TestAppendCodes_UsersIsolated(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	s.AppendCodes(ctx, "user1", []string{"aaa"})
	added, _ := s.AppendCodes(ctx, "user2", []string{"aaa"})
	if added != 1 {
		t.Errorf("Expected user2's set to be independent, got %d added", added)
	}
}

func TestTrackerLifecycle(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	if tracker, err := s.GetTracker(ctx, "user1"); err != nil || tracker != nil {
		t.Fatalf("Expected (nil, nil) for absent tracker, got (%+v, %v)", tracker, err)
	}

	err := s.SaveTracker(ctx, &domain.Tracker{
		UserID:    "user1",
		ChannelID: "chan1",
		Command:   "nc",
	})
	if err != nil {
		t.Fatalf("SaveTracker failed: %v", err)
	}

	tracker, err := s.GetTracker(ctx, "user1")
	if err != nil {
		t.Fatalf("GetTracker failed: %v", err)
	}
	if tracker.ChannelID != "chan1" || tracker.Command != "nc" || tracker.OptIn {
		t.Errorf("Unexpected tracker: %+v", tracker)
	}

	if err := s.SetOptIn(ctx, "user1", true); err != nil {
		t.Fatalf("SetOptIn failed: %v", err)
	}
	if err := s.SetReportAnchor(ctx, "user1", "chan1", "report1"); err != nil {
		t.Fatalf("SetReportAnchor failed: %v", err)
	}

	tracker, _ = s.GetTracker(ctx, "user1")
	if !tracker.OptIn {
		t.Error("Expected opt-in set")
	}
	if !tracker.HasReport() || tracker.ReportMessageID != "report1" {
		t.Errorf("Expected report anchor set, got %+v", tracker)
	}
}

func TestSaveTracker_Replaces(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	s.SaveTracker(ctx, &domain.Tracker{UserID: "user1", ChannelID: "chan1", Command: "nc", OptIn: true})
	s.SaveTracker(ctx, &domain.Tracker{UserID: "user1", ChannelID: "chan2", Command: "ncollection"})

	tracker, _ := s.GetTracker(ctx, "user1")
	if tracker.ChannelID != "chan2" || tracker.OptIn {
		t.Errorf("Expected re-save to replace the tracker, got %+v", tracker)
	}
}

func TestReplyBindings(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	if userID, err := s.UserForReply(ctx, "nope"); err != nil || userID != "" {
		t.Fatalf("Expected empty user for unbound message, got (%q, %v)", userID, err)
	}

	if err := s.BindReply(ctx, "reply1", "user1"); err != nil {
		t.Fatalf("BindReply failed: %v", err)
	}
	userID, err := s.UserForReply(ctx, "reply1")
	if err != nil {
		t.Fatalf("UserForReply failed: %v", err)
	}
	if userID != "user1" {
		t.Errorf("Expected user1, got %q", userID)
	}
}

func TestClearUser(t *testing.T) {
	s := newTestState(t)
	ctx := context.Background()

	s.SaveTracker(ctx, &domain.Tracker{UserID: "user1", ChannelID: "chan1", Command: "nc"})
	s.BindReply(ctx, "reply1", "user1")
	s.AppendCodes(ctx, "user1", []string{"aaa", "bbb"})

	s.SaveTracker(ctx, &domain.Tracker{UserID: "user2", ChannelID: "chan1", Command: "nc"})

	if err := s.ClearUser(ctx, "user1"); err != nil {
		t.Fatalf("ClearUser failed: %v", err)
	}

	if tracker, _ := s.GetTracker(ctx, "user1"); tracker != nil {
		t.Error("Expected tracker wiped")
	}
	if userID, _ := s.UserForReply(ctx, "reply1"); userID != "" {
		t.Error("Expected reply binding wiped")
	}
	if codes, _ := s.ListCodes(ctx, "user1"); len(codes) != 0 {
		t.Errorf("Expected codes wiped, got %v", codes)
	}

	// Other users are untouched.
	if tracker, _ := s.GetTracker(ctx, "user2"); tracker == nil {
		t.Error("Expected user2's tracker to survive")
	}
}
