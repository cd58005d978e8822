package repo

import (
	"context"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// StateRepo is the keyed per-user state store: tracker rows, reply→user
// bindings, and the ordered deduped code set. All mutations are serialized
// by the implementation; ClearUser is atomic across all three.
type StateRepo interface {
	// ClearUser wipes every piece of state held for a user: the tracker,
	// the accumulated codes, and any reply bindings pointing at them.
	ClearUser(ctx context.Context, userID string) error

	// SaveTracker upserts the user's tracker row.
	SaveTracker(ctx context.Context, t *domain.Tracker) error

	// GetTracker returns the user's tracker, or nil when none exists.
	GetTracker(ctx context.Context, userID string) (*domain.Tracker, error)

	// SetOptIn flips the opt-in flag on an existing tracker.
	SetOptIn(ctx context.Context, userID string, optIn bool) error

	// SetReportAnchor remembers the report message to edit on later growth.
	SetReportAnchor(ctx context.Context, userID, channelID, messageID string) error

	// BindReply records the weak back-reference from a resolved companion
	// reply to the user whose trigger produced it.
	BindReply(ctx context.Context, messageID, userID string) error

	// UserForReply resolves a bound reply to its user, "" when unbound.
	UserForReply(ctx context.Context, messageID string) (string, error)

	// AppendCodes appends codes not yet seen for the user, preserving
	// first-seen order, and returns how many were new.
	AppendCodes(ctx context.Context, userID string, codes []string) (int, error)

	// ListCodes returns the user's codes in first-seen order.
	ListCodes(ctx context.Context, userID string) ([]string, error)

	// Close releases the store.
	Close() error
}
