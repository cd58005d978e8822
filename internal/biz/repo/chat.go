package repo

import (
	"context"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// ChatRepo is the outbound chat-platform gateway. Every action is
// best-effort from the caller's point of view: permission and not-found
// failures surface as domain sentinels and must not be treated as fatal.
type ChatRepo interface {
	// SendText posts a plain message and returns its id.
	SendText(ctx context.Context, channelID, text string) (string, error)

	// ReplyText posts a message replying to replyToID without pinging the
	// author, returning the new message id.
	ReplyText(ctx context.Context, channelID, text, replyToID string) (string, error)

	// EditText replaces the content of an existing message.
	EditText(ctx context.Context, channelID, messageID, text string) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// AddReaction places an emoji reaction on a message.
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error

	// FetchMessage re-reads a message, picking up late-attached embeds.
	FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error)

	// CreateThread starts a named sub-conversation under a channel.
	CreateThread(ctx context.Context, channelID, name string) (string, error)

	// ActiveThreads enumerates the guild's unarchived sub-conversations.
	ActiveThreads(ctx context.Context, guildID string) ([]*domain.Thread, error)

	// ArchiveThread archives a sub-conversation, optionally locking it.
	ArchiveThread(ctx context.Context, threadID string, lock bool) error
}
