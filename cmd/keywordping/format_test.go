package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

func sampleMatch() Match {
	return Match{
		MessageID: "m1",
		ChannelID: "10",
		GuildID:   "100",
		Author:    keywordping.User{ID: "2000", Username: "bob", GlobalName: "Bobby"},
		Content:   "deploy\nnow",
		Reason:    keywordping.ReasonKeyword,
		Keyword:   "deploy",
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(sampleMatch(), &buf))

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "one line per match")

	var decoded Match
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sampleMatch(), decoded)
}

func TestOutputPretty(t *testing.T) {
	tests := []struct {
		name  string
		match func(Match) Match
		want  string
	}{
		{
			name:  "keyword",
			match: func(m Match) Match { return m },
			want:  "[#10] Bobby: deploy now (keyword \"deploy\")\n",
		},
		{
			name: "vip",
			match: func(m Match) Match {
				m.Reason, m.Keyword = keywordping.ReasonVIP, ""
				return m
			},
			want: "[#10] * Bobby: deploy now (vip)\n",
		},
		{
			name: "no display name",
			match: func(m Match) Match {
				m.Author.GlobalName = ""
				return m
			},
			want: "[#10] bob: deploy now (keyword \"deploy\")\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, OutputPretty(tt.match(sampleMatch()), &buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputMatch_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := OutputMatch("xml", sampleMatch(), &buf)
	assert.ErrorContains(t, err, "unknown format")
	assert.Empty(t, buf.String())
}

func TestValidFormats(t *testing.T) {
	for _, f := range []string{"jsonl", "pretty"} {
		assert.True(t, validFormats[f], f)
	}
	assert.False(t, validFormats["json"])
}

func TestFormatInvalid(t *testing.T) {
	assert.Equal(t, "", formatInvalid(nil))
	assert.Equal(t, "Invalid pattern: /[/, /(/", formatInvalid([]string{"/[/", "/(/"}))
}
