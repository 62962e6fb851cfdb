package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

const checkLog = `{"type":"READY","user":{"id":"1000","username":"me"}}
{"type":"MESSAGE_CREATE","message":{"id":"m1","channel_id":"10","guild_id":"100","author":{"id":"2000","username":"bob"},"content":"deploy now"}}
{"type":"MESSAGE_CREATE","message":{"id":"m2","channel_id":"10","author":{"id":"3000","username":"carol"},"content":"lunch?"}}
garbage
{"type":"MESSAGE_CREATE","message":{"id":"m3","channel_id":"10","author":{"id":"2000","username":"bob"},"content":"nothing to see"}}
{"type":"MESSAGE_CREATE","message":{"id":"m4","channel_id":"10","author":{"id":"1000","username":"me"},"content":"deploy myself"}}
`

func TestPipeline_Check(t *testing.T) {
	var out bytes.Buffer
	p, err := newPipeline("", "jsonl", &out)
	require.NoError(t, err)
	p.engine.Apply(keywordping.Settings{
		Keywords:         []string{"deploy"},
		WhitelistedUsers: []string{"carol"},
	})

	stats, err := p.check(context.Background(), strings.NewReader(checkLog))
	require.NoError(t, err)
	assert.Equal(t, pipelineStats{Messages: 4, Flagged: 2, Skipped: 1}, stats)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second Match
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "m1", first.MessageID)
	assert.Equal(t, keywordping.ReasonKeyword, first.Reason)
	assert.Equal(t, "deploy", first.Keyword)

	assert.Equal(t, "m2", second.MessageID)
	assert.Equal(t, keywordping.ReasonVIP, second.Reason)
	assert.Equal(t, "100", second.GuildID, "guild filled from channel")
}

func TestPipeline_OwnerWithoutReady(t *testing.T) {
	var out bytes.Buffer
	p, err := newPipeline("2000", "pretty", &out)
	require.NoError(t, err)
	p.engine.Apply(keywordping.Settings{Keywords: []string{"deploy"}})

	// Without READY the owner is 2000 (bob), so his messages are skipped.
	log := strings.SplitN(checkLog, "\n", 2)[1]
	stats, err := p.check(context.Background(), strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Flagged)
	assert.Contains(t, out.String(), "me: deploy myself")
}

func TestPipeline_NoOwner(t *testing.T) {
	var out bytes.Buffer
	p, err := newPipeline("", "jsonl", &out)
	require.NoError(t, err)
	p.engine.Apply(keywordping.Settings{Keywords: []string{"deploy"}})

	log := strings.SplitN(checkLog, "\n", 2)[1]
	stats, err := p.check(context.Background(), strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Flagged)
	assert.Empty(t, out.String())
}

func TestPipeline_InvalidFormat(t *testing.T) {
	_, err := newPipeline("", "xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid format")
}

func TestPipelineStats_String(t *testing.T) {
	s := pipelineStats{Messages: 3, Flagged: 1, Skipped: 2}
	assert.Equal(t, "3 messages, 1 flagged, 2 skipped lines", s.String())
}
