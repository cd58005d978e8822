package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// Outcome classifies how a correlation wait ended.
type Outcome int

const (
	// Resolved means a matching reply arrived with content attached.
	Resolved Outcome = iota
	// ResolvedEmpty means a reply matched but its content never appeared.
	ResolvedEmpty
	// TimedOut means no reply matched within the timeout, or the wait was
	// superseded by a newer trigger for the same key.
	TimedOut
)

// CorrelationConfig carries the wait and content-polling budgets.
type CorrelationConfig struct {
	WaitTimeout  time.Duration
	PollInterval time.Duration
	PollAttempts int
}

// DefaultCorrelationConfig returns the stock timing budgets.
func DefaultCorrelationConfig() CorrelationConfig {
	return CorrelationConfig{
		WaitTimeout:  10 * time.Second,
		PollInterval: 500 * time.Millisecond,
		PollAttempts: 10,
	}
}

// Correlator owns at most one pending reply wait per key (the triggering
// user's id). The dispatcher offers every companion message to it; a
// handler begins a wait and then awaits the first match. Waits for
// different keys never block each other.
type Correlator struct {
	chat repo.ChatRepo
	cfg  CorrelationConfig

	mu    sync.Mutex
	waits map[string]*Wait
}

// Wait is one pending correlation wait handed back by Begin.
type Wait struct {
	key   string
	match func(*domain.Message) bool

	replyCh chan *domain.Message
	done    chan struct{}
}

// Superseded reports whether a newer wait has replaced this one under the
// same key. A resolved wait that was superseded must not write any state:
// the newer trigger's clear already ran.
func (w *Wait) Superseded() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// NewCorrelator creates a correlator over the chat gateway.
func NewCorrelator(chat repo.ChatRepo, cfg CorrelationConfig) *Correlator {
	return &Correlator{
		chat:  chat,
		cfg:   cfg,
		waits: make(map[string]*Wait),
	}
}

// Begin registers a wait for key, atomically superseding any previous wait
// registered under the same key. The superseded wait resolves as TimedOut.
func (c *Correlator) Begin(key string, match func(*domain.Message) bool) *Wait {
	w := &Wait{
		key:     key,
		match:   match,
		replyCh: make(chan *domain.Message, 1),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	if old, ok := c.waits[key]; ok {
		close(old.done)
	}
	c.waits[key] = w
	c.mu.Unlock()

	return w
}

// Offer hands an inbound message to every pending wait whose predicate
// matches it, so same-channel waits of different users all resolve on one
// companion reply. Non-matching messages are ignored.
func (c *Correlator) Offer(msg *domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, w := range c.waits {
		if !w.match(msg) {
			continue
		}
		select {
		case w.replyCh <- msg:
		default:
		}
		delete(c.waits, key)
	}
}

// Pending reports whether a wait is registered for key.
func (c *Correlator) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.waits[key]
	return ok
}

// Await blocks until the wait matches a reply, the bounded timeout lapses,
// or the wait is superseded. When the matched reply has no content yet, it
// polls the message at a fixed interval for a bounded number of attempts
// waiting for content to appear.
func (c *Correlator) Await(ctx context.Context, w *Wait) (*domain.Message, Outcome) {
	defer c.remove(w)

	timer := time.NewTimer(c.cfg.WaitTimeout)
	defer timer.Stop()

	var reply *domain.Message
	select {
	case reply = <-w.replyCh:
	case <-w.done:
		return nil, TimedOut
	case <-timer.C:
		return nil, TimedOut
	case <-ctx.Done():
		return nil, TimedOut
	}

	if reply.HasEmbeds() {
		return reply, Resolved
	}
	return c.pollContent(ctx, reply)
}

// pollContent re-fetches a matched reply waiting for its embeds to attach.
func (c *Correlator) pollContent(ctx context.Context, reply *domain.Message) (*domain.Message, Outcome) {
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return nil, ResolvedEmpty
		}

		fetched, err := c.chat.FetchMessage(ctx, reply.ChannelID, reply.ID)
		if err != nil {
			continue
		}
		if fetched.HasEmbeds() {
			return fetched, Resolved
		}
	}
	return nil, ResolvedEmpty
}

// remove drops the wait if it is still the registered one for its key.
func (c *Correlator) remove(w *Wait) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.waits[w.key]; ok && cur == w {
		delete(c.waits, w.key)
	}
}
