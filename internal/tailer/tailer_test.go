package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, tl *Tailer, n int) []string {
	t.Helper()
	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case line, ok := <-tl.Lines():
			if !ok {
				return got
			}
			got = append(got, line)
		case <-timeout:
			t.Fatalf("timed out after %d of %d lines", len(got), n)
		}
	}
	return got
}

func TestTailer_ReadOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\nthree\n"), 0644))

	cfg := DefaultConfig()
	cfg.FromStart = true
	cfg.Follow = false
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	assert.Equal(t, []string{"one", "two", "three"}, collect(t, tl, 3))

	select {
	case <-tl.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not stop at EOF")
	}
}

func TestTailer_FollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	cfg := DefaultConfig()
	cfg.Poll = true
	tl, err := New(context.Background(), path, cfg)
	require.NoError(t, err)
	defer tl.Stop()

	// Give the tailer time to seek to the end before appending.
	time.Sleep(100 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("new\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, []string{"new"}, collect(t, tl, 1))
}

func TestTailer_MustExist(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"), DefaultConfig())
	assert.Error(t, err)
}

func TestTailer_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tl, err := New(context.Background(), path, DefaultConfig())
	require.NoError(t, err)

	_ = tl.Stop()
	_ = tl.Stop()

	_, ok := <-tl.Lines()
	assert.False(t, ok)
}

func TestTailer_ContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	ctx, cancel := context.WithCancel(context.Background())
	tl, err := New(ctx, path, DefaultConfig())
	require.NoError(t, err)
	defer tl.Stop()

	cancel()
	select {
	case <-tl.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("tailer did not stop on cancel")
	}
}
