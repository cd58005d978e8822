package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// AuctionConfig carries the %auc formatter wiring.
type AuctionConfig struct {
	CompanionID       string
	GuideChannelID    string
	DefaultPreference string
	PreferenceAliases map[string]string
	Fingerprints      map[string]domain.Tier
}

// AuctionUsecase formats a companion view reply into an auction post. The
// command must reply to a well-formed companion embed; anything else earns
// a usage hint pointing at the guide channel.
type AuctionUsecase struct {
	chat repo.ChatRepo
	cfg  AuctionConfig
}

// NewAuctionUsecase creates a new auction usecase.
func NewAuctionUsecase(chat repo.ChatRepo, cfg AuctionConfig) *AuctionUsecase {
	return &AuctionUsecase{chat: chat, cfg: cfg}
}

// HandleMessage processes an %auc command.
func (u *AuctionUsecase) HandleMessage(ctx context.Context, msg *domain.Message) error {
	if msg.RefMessageID == "" {
		return u.usageHint(ctx, msg.ChannelID)
	}

	original, err := u.chat.FetchMessage(ctx, msg.ChannelID, msg.RefMessageID)
	if err != nil {
		if domain.IsIgnorable(err) {
			return u.usageHint(ctx, msg.ChannelID)
		}
		return fmt.Errorf("failed to fetch referenced message: %w", err)
	}

	if original.AuthorID != u.cfg.CompanionID || !original.HasEmbeds() {
		return u.usageHint(ctx, msg.ChannelID)
	}

	embed := original.Embeds[0]
	if !domain.EmphasizedTitle(embed.Title) {
		return u.usageHint(ctx, msg.ChannelID)
	}

	record := u.parseRecord(embed)
	preference := u.parsePreference(msg.Content)

	formatted := fmt.Sprintf(
		"Card Code: %s\n%s %s %s %s %s [ %s ]\n%s\nPreference: %s",
		record.Code,
		record.Print, domain.FieldDelimiter, embed.Title, domain.FieldDelimiter, record.Series, record.Tier,
		record.Owner,
		preference,
	)

	if _, err := u.chat.SendText(ctx, msg.ChannelID, formatted); err != nil && !domain.IsIgnorable(err) {
		return fmt.Errorf("failed to post auction text: %w", err)
	}
	return nil
}

// parseRecord reads the view embed's fields: series, card line, owner.
func (u *AuctionUsecase) parseRecord(embed domain.Embed) domain.CardRecord {
	record := domain.CardRecord{
		Code:   "Unknown",
		Print:  "Unknown",
		Series: "Unknown",
		Owner:  "Unknown",
		Tier:   domain.TierForFingerprint(u.cfg.Fingerprints, embed.Fingerprint),
	}

	if len(embed.Fields) > 0 {
		record.Series = strings.TrimSpace(embed.Fields[0].Value)
	}
	if len(embed.Fields) > 1 {
		record.Code, record.Print = domain.ParseCardLine(strings.TrimSpace(embed.Fields[1].Value))
	}
	if len(embed.Fields) > 2 {
		record.Owner = strings.TrimSpace(embed.Fields[2].Value)
	}
	return record
}

// parsePreference extracts the preference argument, passing it through the
// alias→emoji substitution map; an absent argument yields the default.
func (u *AuctionUsecase) parsePreference(content string) string {
	parts := strings.SplitN(strings.TrimSpace(content), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return u.cfg.DefaultPreference
	}

	pref := parts[1]
	for alias, full := range u.cfg.PreferenceAliases {
		pref = strings.ReplaceAll(pref, alias, full)
	}
	return strings.TrimSpace(pref)
}

func (u *AuctionUsecase) usageHint(ctx context.Context, channelID string) error {
	hint := fmt.Sprintf("read <#%s> on how to use `%%auc`", u.cfg.GuideChannelID)
	if _, err := u.chat.SendText(ctx, channelID, hint); err != nil && !domain.IsIgnorable(err) {
		return fmt.Errorf("failed to post usage hint: %w", err)
	}
	return nil
}
