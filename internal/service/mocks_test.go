package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// Mock implementations

type stubChatRepo struct {
	mu       sync.Mutex
	threads  []*domain.Thread
	archived []string
	deleted  []string
	failIDs  map[string]bool
}

func (s *stubChatRepo) SendText(ctx context.Context, channelID, text string) (string, error) {
	return "sent-1", nil
}

func (s *stubChatRepo) ReplyText(ctx context.Context, channelID, text, replyToID string) (string, error) {
	return "reply-1", nil
}

func (s *stubChatRepo) EditText(ctx context.Context, channelID, messageID, text string) error {
	return nil
}

func (s *stubChatRepo) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *stubChatRepo) deletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *stubChatRepo) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return nil
}

func (s *stubChatRepo) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	return nil, domain.ErrNotFound
}

func (s *stubChatRepo) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	return "thread-1", nil
}

func (s *stubChatRepo) ActiveThreads(ctx context.Context, guildID string) ([]*domain.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Thread(nil), s.threads...), nil
}

func (s *stubChatRepo) ArchiveThread(ctx context.Context, threadID string, lock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[threadID] {
		return errors.New("archive refused")
	}
	s.archived = append(s.archived, threadID)
	return nil
}

func (s *stubChatRepo) archivedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.archived...)
}

type stubStateRepo struct{}

func (stubStateRepo) ClearUser(ctx context.Context, userID string) error { return nil }

func (stubStateRepo) SaveTracker(ctx context.Context, t *domain.Tracker) error { return nil }

func (stubStateRepo) GetTracker(ctx context.Context, userID string) (*domain.Tracker, error) {
	return nil, nil
}

func (stubStateRepo) SetOptIn(ctx context.Context, userID string, optIn bool) error { return nil }

func (stubStateRepo) SetReportAnchor(ctx context.Context, userID, channelID, messageID string) error {
	return nil
}

func (stubStateRepo) BindReply(ctx context.Context, messageID, userID string) error { return nil }

func (stubStateRepo) UserForReply(ctx context.Context, messageID string) (string, error) {
	return "", nil
}

func (stubStateRepo) AppendCodes(ctx context.Context, userID string, codes []string) (int, error) {
	return 0, nil
}

func (stubStateRepo) ListCodes(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (stubStateRepo) Close() error { return nil }
