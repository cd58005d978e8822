package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// Mock implementations

type sentMessage struct {
	ChannelID string
	MessageID string
	Text      string
}

type mockChatRepo struct {
	mu sync.Mutex

	sent      []sentMessage
	replies   []sentMessage
	edits     []sentMessage
	deleted   []string
	reactions []string
	created   []string

	fetchFn  func(channelID, messageID string) (*domain.Message, error)
	createFn func(name string) error

	fetchCalls  int
	createCalls int
	nextID      int
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{}
}

func (m *mockChatRepo) newID() string {
	m.nextID++
	return fmt.Sprintf("msg-%d", m.nextID)
}

func (m *mockChatRepo) SendText(ctx context.Context, channelID, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID()
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, MessageID: id, Text: text})
	return id, nil
}

func (m *mockChatRepo) ReplyText(ctx context.Context, channelID, text, replyToID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.newID()
	m.replies = append(m.replies, sentMessage{ChannelID: channelID, MessageID: id, Text: text})
	return id, nil
}

func (m *mockChatRepo) EditText(ctx context.Context, channelID, messageID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, sentMessage{ChannelID: channelID, MessageID: messageID, Text: text})
	return nil
}

func (m *mockChatRepo) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockChatRepo) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, messageID+":"+emoji)
	return nil
}

func (m *mockChatRepo) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m.mu.Lock()
	m.fetchCalls++
	fn := m.fetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID, messageID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockChatRepo) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	m.mu.Lock()
	m.createCalls++
	fn := m.createFn
	m.mu.Unlock()
	if fn != nil {
		if err := fn(name); err != nil {
			return "", err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, name)
	return m.newID(), nil
}

func (m *mockChatRepo) ActiveThreads(ctx context.Context, guildID string) ([]*domain.Thread, error) {
	return nil, nil
}

func (m *mockChatRepo) ArchiveThread(ctx context.Context, threadID string, lock bool) error {
	return nil
}

func (m *mockChatRepo) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockChatRepo) messageActions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent) + len(m.replies) + len(m.edits)
}

type mockStateRepo struct {
	mu       sync.Mutex
	trackers map[string]*domain.Tracker
	bindings map[string]string
	codes    map[string][]string
}

func newMockStateRepo() *mockStateRepo {
	return &mockStateRepo{
		trackers: make(map[string]*domain.Tracker),
		bindings: make(map[string]string),
		codes:    make(map[string][]string),
	}
}

func (m *mockStateRepo) ClearUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trackers, userID)
	delete(m.codes, userID)
	for msgID, uid := range m.bindings {
		if uid == userID {
			delete(m.bindings, msgID)
		}
	}
	return nil
}

func (m *mockStateRepo) SaveTracker(ctx context.Context, t *domain.Tracker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *t
	m.trackers[t.UserID] = &copied
	return nil
}

func (m *mockStateRepo) GetTracker(ctx context.Context, userID string) (*domain.Tracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trackers[userID]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (m *mockStateRepo) SetOptIn(ctx context.Context, userID string, optIn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trackers[userID]; ok {
		t.OptIn = optIn
	}
	return nil
}

func (m *mockStateRepo) SetReportAnchor(ctx context.Context, userID, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trackers[userID]; ok {
		t.ReportChannelID = channelID
		t.ReportMessageID = messageID
	}
	return nil
}

func (m *mockStateRepo) BindReply(ctx context.Context, messageID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[messageID] = userID
	return nil
}

func (m *mockStateRepo) UserForReply(ctx context.Context, messageID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bindings[messageID], nil
}

func (m *mockStateRepo) AppendCodes(ctx context.Context, userID string, codes []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(m.codes[userID]))
	for _, c := range m.codes[userID] {
		seen[c] = true
	}
	added := 0
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		m.codes[userID] = append(m.codes[userID], c)
		added++
	}
	return added, nil
}

func (m *mockStateRepo) ListCodes(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes[userID]...), nil
}

func (m *mockStateRepo) Close() error { return nil }
