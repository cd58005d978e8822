package usecase

import (
	"context"
	"fmt"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// DeletionConfig carries the companion-reply removal wiring.
type DeletionConfig struct {
	CompanionID string
}

// DeletionUsecase lets a user remove a companion reply to their own
// message. The request replies to the companion message; it is honored only
// when that message itself replies to a message authored by the requester.
// Failed checks earn a short notice, never an error.
type DeletionUsecase struct {
	chat repo.ChatRepo
	cfg  DeletionConfig
}

// NewDeletionUsecase creates a new reply-removal usecase.
func NewDeletionUsecase(chat repo.ChatRepo, cfg DeletionConfig) *DeletionUsecase {
	return &DeletionUsecase{chat: chat, cfg: cfg}
}

// HandleMessage processes a removal request.
func (u *DeletionUsecase) HandleMessage(ctx context.Context, msg *domain.Message) error {
	if msg.RefMessageID == "" {
		return u.notice(ctx, msg, "Reply to the message you want removed.")
	}

	target, err := u.chat.FetchMessage(ctx, msg.ChannelID, msg.RefMessageID)
	if err != nil {
		if domain.IsIgnorable(err) {
			return u.notice(ctx, msg, "That message is already gone.")
		}
		return fmt.Errorf("failed to fetch referenced message: %w", err)
	}
	if target.AuthorID != u.cfg.CompanionID {
		return u.notice(ctx, msg, "You can only remove the companion's messages.")
	}
	if target.RefMessageID == "" {
		return u.notice(ctx, msg, "You can only remove replies to your own messages.")
	}

	origin, err := u.chat.FetchMessage(ctx, msg.ChannelID, target.RefMessageID)
	if err != nil {
		if domain.IsIgnorable(err) {
			return u.notice(ctx, msg, "You can only remove replies to your own messages.")
		}
		return fmt.Errorf("failed to fetch origin message: %w", err)
	}
	if origin.AuthorID != msg.AuthorID {
		return u.notice(ctx, msg, "You can only remove replies to your own messages.")
	}

	if err := u.chat.DeleteMessage(ctx, target.ChannelID, target.ID); err != nil && !domain.IsIgnorable(err) {
		return fmt.Errorf("failed to delete reply: %w", err)
	}

	// The trigger command goes too.
	if err := u.chat.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil && !domain.IsIgnorable(err) {
		fmt.Printf("[Delete] Failed to delete trigger %s: %v\n", msg.ID, err)
	}
	return nil
}

func (u *DeletionUsecase) notice(ctx context.Context, msg *domain.Message, text string) error {
	if _, err := u.chat.ReplyText(ctx, msg.ChannelID, text, msg.ID); err != nil && !domain.IsIgnorable(err) {
		return fmt.Errorf("failed to post notice: %w", err)
	}
	return nil
}
