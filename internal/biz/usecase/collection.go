package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// CollectionConfig carries the collection-session knobs.
type CollectionConfig struct {
	CompanionID string
	ReportEmoji string
	TTL         time.Duration
}

// CollectionUsecase drives the code-tracking flow: a trigger command starts
// a correlation wait for the companion's reply, the user opts in by
// reacting on that reply, and every opted-in extraction appends newly seen
// codes to a single coalesced report message.
type CollectionUsecase struct {
	state repo.StateRepo
	chat  repo.ChatRepo
	corr  *Correlator
	cfg   CollectionConfig

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewCollectionUsecase creates a new collection usecase.
func NewCollectionUsecase(state repo.StateRepo, chat repo.ChatRepo, corr *Correlator, cfg CollectionConfig) *CollectionUsecase {
	return &CollectionUsecase{
		state:  state,
		chat:   chat,
		corr:   corr,
		cfg:    cfg,
		timers: make(map[string]*time.Timer),
		locks:  make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing state writes for one user. Racing
// reaction and edit handlers hold it across the whole read-check-act span of
// an extraction, so exactly one report message ever exists per session.
func (u *CollectionUsecase) userLock(userID string) *sync.Mutex {
	u.locksMu.Lock()
	defer u.locksMu.Unlock()
	lock, ok := u.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[userID] = lock
	}
	return lock
}

// HandleTrigger processes a tracking command. Any prior state for the user
// is wiped first, the expiry timer is re-armed, and a fresh wait for the
// companion's same-channel reply begins. Timeouts and never-populated
// replies are silent.
func (u *CollectionUsecase) HandleTrigger(ctx context.Context, msg *domain.Message) error {
	lock := u.userLock(msg.AuthorID)

	lock.Lock()
	if err := u.state.ClearUser(ctx, msg.AuthorID); err != nil {
		lock.Unlock()
		return fmt.Errorf("failed to clear prior state: %w", err)
	}
	u.armExpiry(msg.AuthorID)
	w := u.corr.Begin(msg.AuthorID, func(m *domain.Message) bool {
		return m.AuthorID == u.cfg.CompanionID && m.ChannelID == msg.ChannelID
	})
	lock.Unlock()

	reply, outcome := u.corr.Await(ctx, w)
	if outcome != Resolved {
		return nil
	}

	lock.Lock()
	defer lock.Unlock()

	// A newer trigger may have raced in while the reply resolved; its clear
	// already ran, so writing now would revive stale state.
	if w.Superseded() {
		return nil
	}

	tracker := &domain.Tracker{
		UserID:    msg.AuthorID,
		ChannelID: msg.ChannelID,
		Command:   msg.Content,
		OptIn:     false,
		CreatedAt: time.Now(),
	}
	if err := u.state.SaveTracker(ctx, tracker); err != nil {
		return fmt.Errorf("failed to save tracker: %w", err)
	}
	if err := u.state.BindReply(ctx, reply.ID, msg.AuthorID); err != nil {
		return fmt.Errorf("failed to bind reply: %w", err)
	}

	if err := u.chat.AddReaction(ctx, reply.ChannelID, reply.ID, u.cfg.ReportEmoji); err != nil && !domain.IsIgnorable(err) {
		fmt.Printf("[Collection] Failed to add reaction: %v\n", err)
	}
	return nil
}

// HandleReaction processes a reaction event. Only the report emoji, placed
// by the bound user on their own correlated reply, flips the opt-in flag
// and runs the first extraction.
func (u *CollectionUsecase) HandleReaction(ctx context.Context, r *domain.Reaction) error {
	if r.Emoji != u.cfg.ReportEmoji {
		return nil
	}

	userID, err := u.state.UserForReply(ctx, r.MessageID)
	if err != nil {
		return err
	}
	if userID == "" || userID != r.UserID {
		return nil
	}

	if err := u.state.SetOptIn(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to opt in: %w", err)
	}

	reply, err := u.chat.FetchMessage(ctx, r.ChannelID, r.MessageID)
	if err != nil {
		if domain.IsIgnorable(err) {
			return nil
		}
		return fmt.Errorf("failed to fetch reply: %w", err)
	}
	return u.extractAndReport(ctx, userID, reply)
}

// HandleReplyEdit processes a companion message edit. Extraction re-runs
// when the edited message is a bound reply and its user has opted in.
func (u *CollectionUsecase) HandleReplyEdit(ctx context.Context, msg *domain.Message) error {
	if !msg.HasEmbeds() {
		return nil
	}

	userID, err := u.state.UserForReply(ctx, msg.ID)
	if err != nil {
		return err
	}
	if userID == "" {
		return nil
	}

	tracker, err := u.state.GetTracker(ctx, userID)
	if err != nil {
		return err
	}
	if tracker == nil || !tracker.OptIn {
		return nil
	}
	return u.extractAndReport(ctx, userID, msg)
}

// extractAndReport parses every field of the reply's embeds with the
// multi-code grammar, appends newly seen codes, and — only when the set
// grew — renders the full set and edits the report message in place,
// creating a fresh reply when none exists or the previous one is gone.
func (u *CollectionUsecase) extractAndReport(ctx context.Context, userID string, reply *domain.Message) error {
	lock := u.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	tracker, err := u.state.GetTracker(ctx, userID)
	if err != nil {
		return err
	}
	if tracker == nil || !tracker.OptIn {
		return nil
	}

	var codes []string
	for _, embed := range reply.Embeds {
		for _, field := range embed.Fields {
			codes = append(codes, domain.ExtractFieldCodes(field.Value)...)
		}
	}

	added, err := u.state.AppendCodes(ctx, userID, codes)
	if err != nil {
		return fmt.Errorf("failed to append codes: %w", err)
	}
	if added == 0 {
		return nil
	}

	all, err := u.state.ListCodes(ctx, userID)
	if err != nil {
		return err
	}
	text := strings.Join(all, ", ")

	if tracker.HasReport() {
		err := u.chat.EditText(ctx, tracker.ReportChannelID, tracker.ReportMessageID, text)
		if err == nil {
			return nil
		}
		if !domain.IsIgnorable(err) {
			return fmt.Errorf("failed to edit report: %w", err)
		}
		// Previous report is gone; fall through and post a fresh one.
	}

	msgID, err := u.chat.ReplyText(ctx, reply.ChannelID, text, reply.ID)
	if err != nil {
		if domain.IsIgnorable(err) {
			return nil
		}
		return fmt.Errorf("failed to post report: %w", err)
	}
	return u.state.SetReportAnchor(ctx, userID, reply.ChannelID, msgID)
}

// armExpiry (re)arms the per-user expiry timer. Firing wipes all per-user
// state: accumulator, bindings, opt-in flag, report anchor.
func (u *CollectionUsecase) armExpiry(userID string) {
	u.timersMu.Lock()
	defer u.timersMu.Unlock()

	if old, ok := u.timers[userID]; ok {
		old.Stop()
	}
	u.timers[userID] = time.AfterFunc(u.cfg.TTL, func() {
		lock := u.userLock(userID)
		lock.Lock()
		err := u.state.ClearUser(context.Background(), userID)
		lock.Unlock()
		if err != nil {
			fmt.Printf("[Collection] Expiry cleanup failed for %s: %v\n", userID, err)
		}
		u.timersMu.Lock()
		delete(u.timers, userID)
		u.timersMu.Unlock()
	})
}

// Close stops all pending expiry timers.
func (u *CollectionUsecase) Close() {
	u.timersMu.Lock()
	defer u.timersMu.Unlock()
	for userID, timer := range u.timers {
		timer.Stop()
		delete(u.timers, userID)
	}
}
