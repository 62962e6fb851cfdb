package discordhost

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// maxPreview is the longest message excerpt included in a notification.
const maxPreview = 300

// convertMessage maps a gateway message onto a keywordping message.
// Embeds are serialized to JSON so keywords can match their text.
func convertMessage(m *discordgo.Message) *keywordping.Message {
	if m == nil {
		return nil
	}
	msg := &keywordping.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.Author = keywordping.User{
			ID:         m.Author.ID,
			Username:   m.Author.Username,
			GlobalName: m.Author.GlobalName,
			Bot:        m.Author.Bot,
		}
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			continue
		}
		msg.Embeds = append(msg.Embeds, raw)
	}
	msg.Mentions = lo.FilterMap(m.Mentions, func(u *discordgo.User, _ int) (string, bool) {
		if u == nil {
			return "", false
		}
		return u.ID, true
	})
	if len(msg.Mentions) == 0 {
		msg.Mentions = nil
	}
	return msg
}

// messageLink returns the web URL of a guild message.
func messageLink(msg *keywordping.Message) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", msg.GuildID, msg.ChannelID, msg.ID)
}

// formatNotification renders the direct message sent for a match.
func formatNotification(msg *keywordping.Message, res keywordping.Result) string {
	var b strings.Builder

	author := lo.CoalesceOrEmpty(msg.Author.GlobalName, msg.Author.Username, msg.Author.ID)
	switch res.Reason {
	case keywordping.ReasonVIP:
		fmt.Fprintf(&b, "**%s** (VIP) wrote in <#%s>", author, msg.ChannelID)
	case keywordping.ReasonKeyword:
		fmt.Fprintf(&b, "**%s** matched `%s` in <#%s>", author, res.Keyword, msg.ChannelID)
	default:
		fmt.Fprintf(&b, "**%s** wrote in <#%s>", author, msg.ChannelID)
	}
	b.WriteString("\n")

	if preview := truncate(msg.Content, maxPreview); preview != "" {
		b.WriteString("> ")
		b.WriteString(strings.ReplaceAll(preview, "\n", "\n> "))
		b.WriteString("\n")
	} else if len(msg.Embeds) > 0 {
		fmt.Fprintf(&b, "> (%d embed(s))\n", len(msg.Embeds))
	}
	b.WriteString(messageLink(msg))
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
