package keywordping

// Directory answers identity lookups for the engine.
// The engine only queries a Directory; it never mutates it.
// A lookup that cannot be answered returns ok == false.
type Directory interface {
	// CurrentUserID returns the ID of the user whose keywords are evaluated.
	CurrentUserID() (id string, ok bool)
	// ChannelGuild returns the guild that owns a channel. Direct-message
	// channels have no guild.
	ChannelGuild(channelID string) (guildID string, ok bool)
	// Nickname returns a member's per-guild nickname.
	Nickname(guildID, userID string) (nick string, ok bool)
	// User returns the freshest known record for a user.
	User(userID string) (User, bool)
}

// Host is the chat client the engine plugs into.
type Host interface {
	// OnMessageArrived registers fn to be called once per incoming message,
	// in arrival order. The returned function unregisters fn.
	OnMessageArrived(fn func(*Message)) (detach func())
	// FlagAsMentioned hands a message the engine has just flagged back to
	// the host's notification pipeline.
	FlagAsMentioned(msg *Message) error
}
