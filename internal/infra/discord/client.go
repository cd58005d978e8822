package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
)

// Client is the Discord gateway adapter. It converts gateway events into
// domain values for the dispatcher and implements repo.ChatRepo for
// outbound actions.
type Client struct {
	session *discordgo.Session

	onMessage     func(*domain.Message)
	onMessageEdit func(*domain.Message)
	onReaction    func(*domain.Reaction)
}

// NewClient creates a Discord client for the bot token.
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent

	return &Client{session: session}, nil
}

// OnMessage sets the message-created callback.
func (c *Client) OnMessage(fn func(*domain.Message)) { c.onMessage = fn }

// OnMessageEdit sets the message-edited callback.
func (c *Client) OnMessageEdit(fn func(*domain.Message)) { c.onMessageEdit = fn }

// OnReaction sets the reaction-added callback.
func (c *Client) OnReaction(fn func(*domain.Reaction)) { c.onReaction = fn }

// Start registers the gateway handlers and opens the connection.
func (c *Client) Start() error {
	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}
		if c.onMessage != nil {
			c.onMessage(toDomainMessage(m.Message))
		}
	})

	c.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		// Edit payloads can arrive without an author (embed-only updates).
		if m.Author != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		if c.onMessageEdit != nil {
			c.onMessageEdit(toDomainMessage(m.Message))
		}
	})

	c.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if s.State.User != nil && r.UserID == s.State.User.ID {
			return
		}
		if c.onReaction != nil {
			c.onReaction(&domain.Reaction{
				MessageID: r.MessageID,
				ChannelID: r.ChannelID,
				GuildID:   r.GuildID,
				UserID:    r.UserID,
				Emoji:     r.Emoji.Name,
			})
		}
	})

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	fmt.Println("[Discord] Gateway connected")
	return nil
}

// Stop closes the gateway connection.
func (c *Client) Stop() {
	if err := c.session.Close(); err != nil {
		fmt.Printf("[Discord] Close error: %v\n", err)
	}
}

// ========== repo.ChatRepo ==========

func (c *Client) SendText(ctx context.Context, channelID, text string) (string, error) {
	msg, err := c.session.ChannelMessageSend(channelID, text)
	if err != nil {
		return "", mapErr(err)
	}
	return msg.ID, nil
}

func (c *Client) ReplyText(ctx context.Context, channelID, text, replyToID string) (string, error) {
	msg, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: text,
		Reference: &discordgo.MessageReference{
			MessageID: replyToID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{RepliedUser: false},
	})
	if err != nil {
		return "", mapErr(err)
	}
	return msg.ID, nil
}

func (c *Client) EditText(ctx context.Context, channelID, messageID, text string) error {
	_, err := c.session.ChannelMessageEdit(channelID, messageID, text)
	return mapErr(err)
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return mapErr(c.session.ChannelMessageDelete(channelID, messageID))
}

func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return mapErr(c.session.MessageReactionAdd(channelID, messageID, emoji))
}

func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toDomainMessage(msg), nil
}

func (c *Client) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	thread, err := c.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: 1440,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
	if err != nil {
		return "", mapErr(err)
	}
	return thread.ID, nil
}

func (c *Client) ActiveThreads(ctx context.Context, guildID string) ([]*domain.Thread, error) {
	list, err := c.session.GuildThreadsActive(guildID)
	if err != nil {
		return nil, mapErr(err)
	}

	threads := make([]*domain.Thread, 0, len(list.Threads))
	for _, ch := range list.Threads {
		t := &domain.Thread{
			ID:       ch.ID,
			ParentID: ch.ParentID,
			Name:     ch.Name,
		}
		if ch.ThreadMetadata != nil {
			t.Archived = ch.ThreadMetadata.Archived
			t.Locked = ch.ThreadMetadata.Locked
		}
		if created, err := discordgo.SnowflakeTimestamp(ch.ID); err == nil {
			t.CreatedAt = created
		}
		threads = append(threads, t)
	}
	return threads, nil
}

func (c *Client) ArchiveThread(ctx context.Context, threadID string, lock bool) error {
	archived := true
	edit := &discordgo.ChannelEdit{Archived: &archived}
	if lock {
		edit.Locked = &lock
	}
	_, err := c.session.ChannelEditComplex(threadID, edit)
	return mapErr(err)
}

// ========== conversions ==========

func toDomainMessage(m *discordgo.Message) *domain.Message {
	msg := &domain.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		CreatedAt: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	if m.MessageReference != nil {
		msg.RefMessageID = m.MessageReference.MessageID
	}
	for _, e := range m.Embeds {
		embed := domain.Embed{Title: e.Title}
		if e.Thumbnail != nil {
			embed.Fingerprint = e.Thumbnail.URL
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, domain.EmbedField{Name: f.Name, Value: f.Value})
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	return msg
}

// mapErr maps REST failures to the domain error taxonomy. Permission and
// not-found failures become sentinels the callers swallow; rate limits
// carry the server-advised delay.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var rle *discordgo.RateLimitError
	if errors.As(err, &rle) {
		return &domain.RateLimitedError{RetryAfter: rle.RetryAfter}
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case http.StatusTooManyRequests:
			return &domain.RateLimitedError{RetryAfter: time.Second}
		}
	}
	return err
}
