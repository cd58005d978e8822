package usecase

import (
	"context"
	"testing"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

func newDeletionFixture() (*DeletionUsecase, *mockChatRepo) {
	chat := newMockChatRepo()
	uc := NewDeletionUsecase(chat, DeletionConfig{CompanionID: "companion"})
	return uc, chat
}

// deletionMessages wires up the fetch map for a removal scenario: the
// companion's reply "target1" answering "origin1" by originAuthor.
func deletionMessages(chat *mockChatRepo, targetAuthor, originAuthor string) {
	chat.fetchFn = func(channelID, messageID string) (*domain.Message, error) {
		switch messageID {
		case "target1":
			return &domain.Message{
				ID: "target1", ChannelID: channelID, AuthorID: targetAuthor, RefMessageID: "origin1",
			}, nil
		case "origin1":
			return &domain.Message{
				ID: "origin1", ChannelID: channelID, AuthorID: originAuthor,
			}, nil
		}
		return nil, domain.ErrNotFound
	}
}

func TestDeletion_RemovesOwnedReply(t *testing.T) {
	uc, chat := newDeletionFixture()
	deletionMessages(chat, "companion", "user1")

	err := uc.HandleMessage(context.Background(), &domain.Message{
		ID: "m1", ChannelID: "chan1", AuthorID: "user1", Content: "%delete", RefMessageID: "target1",
	})
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	if len(chat.deleted) != 2 || chat.deleted[0] != "target1" || chat.deleted[1] != "m1" {
		t.Errorf("Expected the reply and the trigger deleted, got %v", chat.deleted)
	}
	if chat.messageActions() != 0 {
		t.Error("Expected no notice on success")
	}
}

func TestDeletion_ForeignOriginRefused(t *testing.T) {
	uc, chat := newDeletionFixture()
	deletionMessages(chat, "companion", "somebody-else")

	uc.HandleMessage(context.Background(), &domain.Message{
		ID: "m1", ChannelID: "chan1", AuthorID: "user1", Content: "%delete", RefMessageID: "target1",
	})

	if len(chat.deleted) != 0 {
		t.Errorf("Expected nothing deleted for a foreign origin, got %v", chat.deleted)
	}
	if len(chat.replies) != 1 {
		t.Fatalf("Expected one notice, got %d", len(chat.replies))
	}
}

func TestDeletion_NonCompanionTargetRefused(t *testing.T) {
	uc, chat := newDeletionFixture()
	deletionMessages(chat, "somebody-else", "user1")

	uc.HandleMessage(context.Background(), &domain.Message{
		ID: "m1", ChannelID: "chan1", AuthorID: "user1", Content: "%delete", RefMessageID: "target1",
	})

	if len(chat.deleted) != 0 {
		t.Errorf("Expected nothing deleted for a non-companion target, got %v", chat.deleted)
	}
	if len(chat.replies) != 1 {
		t.Fatalf("Expected one notice, got %d", len(chat.replies))
	}
}

func TestDeletion_UnreferencedTargetRefused(t *testing.T) {
	uc, chat := newDeletionFixture()
	chat.fetchFn = func(channelID, messageID string) (*domain.Message, error) {
		// The companion message is not a reply to anything.
		return &domain.Message{ID: messageID, ChannelID: channelID, AuthorID: "companion"}, nil
	}

	uc.HandleMessage(context.Background(), &domain.Message{
		ID: "m1", ChannelID: "chan1", AuthorID: "user1", Content: "%delete", RefMessageID: "target1",
	})

	if len(chat.deleted) != 0 {
		t.Errorf("Expected nothing deleted, got %v", chat.deleted)
	}
	if len(chat.replies) != 1 {
		t.Fatalf("Expected one notice, got %d", len(chat.replies))
	}
}

func TestDeletion_NoReferenceNotice(t *testing.T) {
	uc, chat := newDeletionFixture()

	uc.HandleMessage(context.Background(), &domain.Message{
		ID: "m1", ChannelID: "chan1", AuthorID: "user1", Content: "%delete",
	})

	if len(chat.deleted) != 0 {
		t.Errorf("Expected nothing deleted, got %v", chat.deleted)
	}
	if len(chat.replies) != 1 {
		t.Fatalf("Expected one notice, got %d", len(chat.replies))
	}
}
