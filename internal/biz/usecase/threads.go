package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// ThreadsConfig carries the bulk thread creation wiring.
type ThreadsConfig struct {
	Whitelist     map[string]bool
	RetryAttempts int
}

// ThreadsUsecase handles the whitelisted bulk sub-conversation command:
// each "|"-separated argument becomes a thread in the channel. Rate-limited
// creations retry after the server-advised delay with a bounded attempt
// counter; one item failing never aborts the rest.
type ThreadsUsecase struct {
	chat repo.ChatRepo
	cfg  ThreadsConfig
}

// NewThreadsUsecase creates a new bulk-threads usecase.
func NewThreadsUsecase(chat repo.ChatRepo, cfg ThreadsConfig) *ThreadsUsecase {
	return &ThreadsUsecase{chat: chat, cfg: cfg}
}

// HandleMessage processes a %threads command. Non-whitelisted users are
// ignored silently.
func (u *ThreadsUsecase) HandleMessage(ctx context.Context, msg *domain.Message) error {
	if !u.cfg.Whitelist[msg.AuthorID] {
		return nil
	}

	parts := strings.SplitN(strings.TrimSpace(msg.Content), " ", 2)
	if len(parts) < 2 {
		return nil
	}

	created := 0
	for _, raw := range strings.Split(parts[1], "|") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if err := u.createWithRetry(ctx, msg.ChannelID, name); err != nil {
			fmt.Printf("[Threads] Failed to create %q: %v\n", name, err)
			continue
		}
		created++
	}

	fmt.Printf("[Threads] Created %d threads in %s\n", created, msg.ChannelID)
	return nil
}

// createWithRetry creates one thread, waiting out rate limits up to the
// configured attempt cap.
func (u *ThreadsUsecase) createWithRetry(ctx context.Context, channelID, name string) error {
	var lastErr error
	for attempt := 0; attempt < u.cfg.RetryAttempts; attempt++ {
		_, err := u.chat.CreateThread(ctx, channelID, name)
		if err == nil {
			return nil
		}

		var rle *domain.RateLimitedError
		if !errors.As(err, &rle) {
			return err
		}
		lastErr = err

		select {
		case <-time.After(rle.RetryAfter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", u.cfg.RetryAttempts, lastErr)
}
