package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// ArchiveGroup is one auto-archive channel group with its own daily target
// time and failure domain.
type ArchiveGroup struct {
	Name       string
	GuildID    string
	ChannelIDs map[string]bool
	Trigger    *domain.DailyTrigger
	MinAge     time.Duration
}

// Archiver runs one independent recurring sweep loop per channel group:
// fine-grained polling until the group's daily trigger fires, one sweep,
// then a long cooldown before polling resumes.
type Archiver struct {
	chat   repo.ChatRepo
	groups []*ArchiveGroup

	pollInterval time.Duration
	cooldown     time.Duration
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewArchiver creates an archiver over the configured groups.
func NewArchiver(chat repo.ChatRepo, groups []*ArchiveGroup) *Archiver {
	return &Archiver{
		chat:         chat,
		groups:       groups,
		pollInterval: 60 * time.Second,
		cooldown:     23*time.Hour + 30*time.Minute,
		now:          time.Now,
	}
}

// Start starts one loop per group.
func (a *Archiver) Start(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	for _, group := range a.groups {
		a.wg.Add(1)
		go a.loop(group)
	}
	fmt.Printf("[Archiver] Started %d group loops\n", len(a.groups))
}

// Stop stops all group loops.
func (a *Archiver) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	fmt.Println("[Archiver] Stopped")
}

func (a *Archiver) loop(group *ArchiveGroup) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			if !group.Trigger.Tick(a.now()) {
				continue
			}

			a.sweep(a.ctx, group)

			// Done for this calendar date; back off until shortly
			// before the next target time.
			select {
			case <-a.ctx.Done():
				return
			case <-time.After(a.cooldown):
			}
		}
	}
}

// sweep archives and locks every unlocked thread under the group's parent
// channels whose age exceeds the minimum. Per-thread failures are logged
// and skipped so the rest of the sweep continues.
func (a *Archiver) sweep(ctx context.Context, group *ArchiveGroup) {
	threads, err := a.chat.ActiveThreads(ctx, group.GuildID)
	if err != nil {
		fmt.Printf("[Archiver] %s: failed to list threads: %v\n", group.Name, err)
		return
	}

	archived := 0
	cutoff := a.now().Add(-group.MinAge)
	for _, t := range threads {
		if !group.ChannelIDs[t.ParentID] || t.Locked {
			continue
		}
		if t.CreatedAt.After(cutoff) {
			continue
		}
		if err := a.chat.ArchiveThread(ctx, t.ID, true); err != nil {
			fmt.Printf("[Archiver] %s: failed to archive %s: %v\n", group.Name, t.ID, err)
			continue
		}
		archived++
	}

	fmt.Printf("[Archiver] %s: swept %d threads (archived %d)\n", group.Name, len(threads), archived)
}
