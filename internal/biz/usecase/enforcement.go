package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"
)

// EnforcementConfig carries the policy-enforcement wiring.
type EnforcementConfig struct {
	CompanionID         string
	ModerationChannelID string
	Rules               map[string]domain.PolicyRule
	Fingerprints        map[string]domain.Tier
}

// EnforcementUsecase polices the view-command channels: it deletes
// malformed commands outright, correlates the companion's reply to a valid
// one, parses the card record out of it, and enforces the channel's tier
// and print-range rule with delete-plus-warn on violation.
type EnforcementUsecase struct {
	chat repo.ChatRepo
	corr *Correlator
	cfg  EnforcementConfig
}

// NewEnforcementUsecase creates a new enforcement usecase.
func NewEnforcementUsecase(chat repo.ChatRepo, corr *Correlator, cfg EnforcementConfig) *EnforcementUsecase {
	return &EnforcementUsecase{chat: chat, corr: corr, cfg: cfg}
}

// Ruled reports whether a channel carries a policy rule.
func (u *EnforcementUsecase) Ruled(channelID string) bool {
	_, ok := u.cfg.Rules[channelID]
	return ok
}

// HandleMessage processes a user message in a policy-ruled channel.
func (u *EnforcementUsecase) HandleMessage(ctx context.Context, msg *domain.Message) error {
	rule, ok := u.cfg.Rules[msg.ChannelID]
	if !ok {
		return nil
	}

	verb := ""
	if parts := strings.Fields(strings.ToLower(strings.TrimSpace(msg.Content))); len(parts) > 0 {
		verb = parts[0]
	}

	// An unrecognized command is deleted without warning and without
	// waiting for any reply.
	if !domain.ViewVerb(verb) {
		u.deleteQuiet(ctx, msg.ChannelID, msg.ID)
		return nil
	}

	w := u.corr.Begin(msg.AuthorID, func(m *domain.Message) bool {
		return m.AuthorID == u.cfg.CompanionID &&
			m.ChannelID == msg.ChannelID &&
			m.RefMessageID == msg.ID
	})

	reply, outcome := u.corr.Await(ctx, w)
	if outcome != Resolved {
		return nil
	}

	record, ok := u.parseRecord(reply)
	if !ok {
		return nil
	}

	verdict := domain.Evaluate(rule, verb, record)
	switch verdict.Kind {
	case domain.RejectTierMismatch, domain.RejectPrintOutOfRange:
		u.deleteQuiet(ctx, msg.ChannelID, msg.ID)
		u.deleteQuiet(ctx, reply.ChannelID, reply.ID)
		u.warn(ctx, msg, record, verdict)
	}
	return nil
}

// parseRecord builds a card record from a companion view reply. The card
// line is the second field of the first embed; the tier comes from the
// thumbnail fingerprint.
func (u *EnforcementUsecase) parseRecord(reply *domain.Message) (domain.CardRecord, bool) {
	if len(reply.Embeds) == 0 || len(reply.Embeds[0].Fields) < 2 {
		return domain.CardRecord{}, false
	}
	embed := reply.Embeds[0]

	code, print := domain.ParseCardLine(strings.TrimSpace(embed.Fields[1].Value))
	record := domain.CardRecord{
		Code:  code,
		Print: print,
		Tier:  domain.TierForFingerprint(u.cfg.Fingerprints, embed.Fingerprint),
	}
	if len(embed.Fields) > 0 {
		record.Series = strings.TrimSpace(embed.Fields[0].Value)
	}
	if len(embed.Fields) > 2 {
		record.Owner = strings.TrimSpace(embed.Fields[2].Value)
	}
	return record, true
}

// warn posts one templated warning to the moderation channel, mentioning
// the author, with wording per rejection kind.
func (u *EnforcementUsecase) warn(ctx context.Context, msg *domain.Message, record domain.CardRecord, verdict domain.Verdict) {
	var text string
	switch verdict.Kind {
	case domain.RejectTierMismatch:
		text = fmt.Sprintf(
			"<@%s>, your recently posted card %s is tier %s, but <#%s> only allows %s cards. Please post it in the matching tier channel.",
			msg.AuthorID, record.Code, verdict.ActualTier, msg.ChannelID, verdict.ExpectedTier,
		)
	case domain.RejectPrintOutOfRange:
		text = fmt.Sprintf(
			"<@%s>, your recently posted card %s has a print number %d, which is not allowed in <#%s>. Please check the print number and post in the correct channel.",
			msg.AuthorID, record.Code, verdict.Print, msg.ChannelID,
		)
	default:
		return
	}

	if _, err := u.chat.SendText(ctx, u.cfg.ModerationChannelID, text); err != nil && !domain.IsIgnorable(err) {
		fmt.Printf("[Enforce] Failed to post warning: %v\n", err)
	}
}

// deleteQuiet deletes a message, swallowing permission and not-found
// failures.
func (u *EnforcementUsecase) deleteQuiet(ctx context.Context, channelID, messageID string) {
	if err := u.chat.DeleteMessage(ctx, channelID, messageID); err != nil && !domain.IsIgnorable(err) {
		fmt.Printf("[Enforce] Failed to delete message %s: %v\n", messageID, err)
	}
}
