package domain

import "time"

// Message is a chat message as seen by the dispatcher. Embeds carry the
// structured reply fields of companion messages; ordinary user messages
// have none.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	AuthorBot bool
	Content   string
	Embeds    []Embed
	// RefMessageID is the id of the message this one replies to, if any.
	RefMessageID string
	CreatedAt    time.Time
}

// HasEmbeds reports whether the structured reply content has been attached.
// Companion replies often arrive before their embeds do.
func (m *Message) HasEmbeds() bool {
	return len(m.Embeds) > 0
}

// Embed is one structured reply segment of a companion message.
type Embed struct {
	Title string
	// Fingerprint is an opaque thumbnail fingerprint used for tier lookup.
	Fingerprint string
	Fields      []EmbedField
}

// EmbedField is a titled text value inside an embed.
type EmbedField struct {
	Name  string
	Value string
}

// Reaction is an emoji reaction placed on a message.
type Reaction struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	Emoji     string
}

// Thread is a threaded sub-conversation anchored under a parent channel.
type Thread struct {
	ID        string
	ParentID  string
	Name      string
	Archived  bool
	Locked    bool
	CreatedAt time.Time
}
