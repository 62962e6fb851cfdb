package discordhost

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

func TestConvertMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "10",
		GuildID:   "100",
		Content:   "hello",
		Author:    &discordgo.User{ID: "2000", Username: "bob", GlobalName: "Bob", Bot: true},
		Embeds:    []*discordgo.MessageEmbed{{Title: "Incident"}, nil},
		Mentions:  []*discordgo.User{{ID: "3000"}, nil},
	}

	msg := convertMessage(m)
	require.NotNil(t, msg)
	assert.Equal(t, keywordping.User{ID: "2000", Username: "bob", GlobalName: "Bob", Bot: true}, msg.Author)
	assert.Equal(t, []string{"3000"}, msg.Mentions)
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, string(msg.Embeds[0]), `"title":"Incident"`)

	assert.Nil(t, convertMessage(nil))
	assert.Nil(t, convertMessage(&discordgo.Message{ID: "x"}).Mentions)
}

func TestFormatNotification(t *testing.T) {
	msg := &keywordping.Message{
		ID:        "m1",
		ChannelID: "10",
		GuildID:   "100",
		Author:    keywordping.User{ID: "2000", Username: "bob"},
		Content:   "line one\nline two",
	}

	got := formatNotification(msg, keywordping.Result{Matched: true, Reason: keywordping.ReasonKeyword, Keyword: "line"})
	assert.Equal(t, "**bob** matched `line` in <#10>\n> line one\n> line two\nhttps://discord.com/channels/100/10/m1", got)

	got = formatNotification(msg, keywordping.Result{Matched: true, Reason: keywordping.ReasonVIP})
	assert.True(t, strings.HasPrefix(got, "**bob** (VIP) wrote in <#10>\n"))

	msg.Content = ""
	msg.Embeds = make([]json.RawMessage, 2)
	got = formatNotification(msg, keywordping.Result{})
	assert.Contains(t, got, "> (2 embed(s))")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "日本…", truncate("日本語テキスト", 3))
}
