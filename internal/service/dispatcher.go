package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/usecase"
)

// Dispatcher routes inbound platform events to the usecases. Flows that
// block on a correlation wait run on their own goroutine so the dispatch
// path keeps servicing other events.
type Dispatcher struct {
	companionID string

	corr        *usecase.Correlator
	collection  *usecase.CollectionUsecase
	enforcement *usecase.EnforcementUsecase
	auction     *usecase.AuctionUsecase
	threads     *usecase.ThreadsUsecase
	deletion    *usecase.DeletionUsecase
}

// NewDispatcher creates an event dispatcher.
func NewDispatcher(
	companionID string,
	corr *usecase.Correlator,
	collection *usecase.CollectionUsecase,
	enforcement *usecase.EnforcementUsecase,
	auction *usecase.AuctionUsecase,
	threads *usecase.ThreadsUsecase,
	deletion *usecase.DeletionUsecase,
) *Dispatcher {
	return &Dispatcher{
		companionID: companionID,
		corr:        corr,
		collection:  collection,
		enforcement: enforcement,
		auction:     auction,
		threads:     threads,
		deletion:    deletion,
	}
}

// HandleMessage routes a message-created event.
func (d *Dispatcher) HandleMessage(msg *domain.Message) {
	// Companion messages feed pending correlation waits and nothing else.
	if msg.AuthorID == d.companionID {
		d.corr.Offer(msg)
		return
	}

	// Policy-ruled channels are enforced for every user message, commands
	// included: a tracking trigger posted there is tracked AND deleted as a
	// non-view command.
	if !msg.AuthorBot && d.enforcement.Ruled(msg.ChannelID) {
		go d.run("enforce", func(ctx context.Context) error {
			return d.enforcement.HandleMessage(ctx, msg)
		})
	}

	content := strings.ToLower(strings.TrimSpace(msg.Content))

	switch {
	case strings.HasPrefix(content, "%auc"):
		go d.run("auction", func(ctx context.Context) error {
			return d.auction.HandleMessage(ctx, msg)
		})

	case content == "nc" || strings.HasPrefix(content, "nc ") ||
		content == "ncollection" || strings.HasPrefix(content, "ncollection "):
		go d.run("collection", func(ctx context.Context) error {
			return d.collection.HandleTrigger(ctx, msg)
		})

	case strings.HasPrefix(content, "%threads"):
		go d.run("threads", func(ctx context.Context) error {
			return d.threads.HandleMessage(ctx, msg)
		})

	case strings.HasPrefix(content, "%delete"):
		go d.run("delete", func(ctx context.Context) error {
			return d.deletion.HandleMessage(ctx, msg)
		})
	}
}

// HandleMessageEdit routes a message-edited event. Only companion edits
// carrying content matter: they re-run extraction for bound replies.
func (d *Dispatcher) HandleMessageEdit(msg *domain.Message) {
	if msg.AuthorID != d.companionID && msg.AuthorID != "" {
		return
	}
	if !msg.HasEmbeds() {
		return
	}
	go d.run("collection", func(ctx context.Context) error {
		return d.collection.HandleReplyEdit(ctx, msg)
	})
}

// HandleReaction routes a reaction-added event.
func (d *Dispatcher) HandleReaction(r *domain.Reaction) {
	go d.run("collection", func(ctx context.Context) error {
		return d.collection.HandleReaction(ctx, r)
	})
}

// run executes one handler, containing its failure to this event.
func (d *Dispatcher) run(name string, fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		fmt.Printf("[Dispatch] %s handler error: %v\n", name, err)
	}
}
