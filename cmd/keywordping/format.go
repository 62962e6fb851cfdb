package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// Match is one flagged message as printed by check and tail.
type Match struct {
	MessageID string             `json:"message_id,omitempty"`
	ChannelID string             `json:"channel_id"`
	GuildID   string             `json:"guild_id,omitempty"`
	Author    keywordping.User   `json:"author"`
	Content   string             `json:"content,omitempty"`
	Reason    keywordping.Reason `json:"reason"`
	Keyword   string             `json:"keyword,omitempty"`
}

func newMatch(msg *keywordping.Message, res keywordping.Result) Match {
	return Match{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Author:    msg.Author,
		Content:   msg.Content,
		Reason:    res.Reason,
		Keyword:   res.Keyword,
	}
}

// OutputMatch writes a match in the specified format to the writer.
func OutputMatch(format string, m Match, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(m, out)
	case "pretty":
		return OutputPretty(m, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a match as one JSON line.
func OutputJSON(m Match, out io.Writer) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a match in human-readable format.
func OutputPretty(m Match, out io.Writer) error {
	author := lo.CoalesceOrEmpty(m.Author.GlobalName, m.Author.Username, m.Author.ID)
	content := strings.ReplaceAll(m.Content, "\n", " ")

	var err error
	switch m.Reason {
	case keywordping.ReasonVIP:
		_, err = fmt.Fprintf(out, "[#%s] * %s: %s (vip)\n", m.ChannelID, author, content)
	default:
		_, err = fmt.Fprintf(out, "[#%s] %s: %s (keyword %q)\n", m.ChannelID, author, content, m.Keyword)
	}
	return err
}

// formatInvalid renders the invalid-pattern report shown after editing
// keywords.
func formatInvalid(raws []string) string {
	if len(raws) == 0 {
		return ""
	}
	return "Invalid pattern: " + strings.Join(raws, ", ")
}
