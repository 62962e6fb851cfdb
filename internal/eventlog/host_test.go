package eventlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordping/keywordping-go/internal/tailer"
	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

const sampleLog = `{"type":"READY","user":{"id":"1000","username":"me"}}
{"type":"MESSAGE_CREATE","message":{"id":"m1","channel_id":"10","guild_id":"100","author":{"id":"2000","username":"bob"},"content":"deploy now"}}
{"type":"TYPING_START","channel_id":"10"}
not json
{"type":"MESSAGE_CREATE","message":{"id":"m2","channel_id":"10","author":{"id":"2000","username":"bob"},"content":"lunch?"}}
{"type":"MESSAGE_CREATE","message":{"id":"m3","channel_id":"dm","author":{"id":"3000","username":"carol"},"content":"deploy in dm"}}
`

type recorder struct {
	mu   sync.Mutex
	msgs []*keywordping.Message
	errs []error
}

func (r *recorder) message(m *keywordping.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestFileHost_ReadFrom(t *testing.T) {
	rec := &recorder{}
	h := NewFileHost(NewDirectory(""), WithErrorHandler(rec.error))
	h.OnMessageArrived(rec.message)

	require.NoError(t, h.ReadFrom(context.Background(), strings.NewReader(sampleLog)))

	assert.Equal(t, []string{"m1", "m2", "m3"}, rec.ids())
	require.Len(t, rec.errs, 1)
	var de *DecodeError
	require.True(t, errors.As(rec.errs[0], &de))
	assert.Equal(t, 4, de.Line)

	me, ok := h.Directory().CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "1000", me)
}

func TestFileHost_WithEngine(t *testing.T) {
	var flagged []string
	h := NewFileHost(NewDirectory(""), WithNotify(func(m *keywordping.Message) error {
		flagged = append(flagged, m.ID)
		return nil
	}))

	e, err := keywordping.NewEngine(h.Directory())
	require.NoError(t, err)
	e.Apply(keywordping.Settings{Keywords: []string{"deploy", "lunch"}})
	e.Attach(h)

	require.NoError(t, h.ReadFrom(context.Background(), strings.NewReader(sampleLog)))

	// m2 has no guild_id but its channel is known from m1; m3 is a DM.
	assert.Equal(t, []string{"m1", "m2"}, flagged)
}

func TestFileHost_Detach(t *testing.T) {
	rec := &recorder{}
	h := NewFileHost(NewDirectory("1000"))
	detach := h.OnMessageArrived(rec.message)
	detach()
	detach()

	require.NoError(t, h.ReadFrom(context.Background(), strings.NewReader(sampleLog)))
	assert.Empty(t, rec.ids())
}

func TestFileHost_SubscriberOrder(t *testing.T) {
	var order []string
	h := NewFileHost(NewDirectory("1000"))
	h.OnMessageArrived(func(*keywordping.Message) { order = append(order, "first") })
	h.OnMessageArrived(func(*keywordping.Message) { order = append(order, "second") })

	h.Dispatch(mustDecode(t, messageLine))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFileHost_FlagWithoutNotify(t *testing.T) {
	h := NewFileHost(NewDirectory("1000"))
	assert.NoError(t, h.FlagAsMentioned(&keywordping.Message{ID: "m"}))
}

func TestFileHost_ReadFromCancelled(t *testing.T) {
	h := NewFileHost(NewDirectory("1000"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.ReadFrom(ctx, strings.NewReader(sampleLog))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileHost_ReadFromLineTooLong(t *testing.T) {
	h := NewFileHost(NewDirectory("1000"))
	long := strings.Repeat("x", MaxLineBytes+10)

	err := h.ReadFrom(context.Background(), strings.NewReader(long))
	assert.ErrorIs(t, err, ErrLineTooLong)
}

func TestFileHost_Follow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))

	rec := &recorder{}
	h := NewFileHost(NewDirectory(""), WithErrorHandler(rec.error))
	h.OnMessageArrived(rec.message)

	cfg := tailer.DefaultConfig()
	cfg.FromStart = true
	cfg.Follow = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Follow(ctx, path, cfg))
	assert.Equal(t, []string{"m1", "m2", "m3"}, rec.ids())
}
