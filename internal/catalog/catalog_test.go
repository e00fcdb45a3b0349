package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/robottwo/chatline/pkg/richtext"
)

const sampleCatalog = `users:
  - id: "1"
    name: ada
    email: ada@example.com
  - id: "42"
    name: carol
`

func TestParse(t *testing.T) {
	users, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, []richtext.User{
		{ID: "1", Name: "ada", Email: "ada@example.com"},
		{ID: "42", Name: "carol"},
	}, users)
}

func TestParseReportsInvalidEntries(t *testing.T) {
	data := `users:
  - id: "1"
    name: ada
  - name: nobody
  - id: "2"
  - id: "1"
    name: again
  - id: " 3 "
    name: " bob "
`
	users, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 2: missing id")
	assert.Contains(t, err.Error(), "user 3 (2): missing name")
	assert.Contains(t, err.Error(), "user 4: duplicate id 1")

	assert.Equal(t, []richtext.User{
		{ID: "1", Name: "ada"},
		{ID: "3", Name: "bob"},
	}, users)
}

func TestParseMalformed(t *testing.T) {
	users, err := Parse([]byte("users: [oops"))
	assert.Error(t, err)
	assert.Nil(t, users)
}

func TestParseEmpty(t *testing.T) {
	users, err := Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is an empty catalog", func(t *testing.T) {
		users, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(dir, "users.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

		users, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})

	t.Run("error names the file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("users:\n  - name: x\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: []\n"), 0o600))

	var mu sync.Mutex
	var loaded [][]richtext.User

	w, err := NewWatcher(path, zaptest.NewLogger(t), func(users []richtext.User) {
		mu.Lock()
		loaded = append(loaded, users)
		mu.Unlock()
	})
	require.NoError(t, err)
	w.delay = 20 * time.Millisecond
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(loaded) > 0 && len(loaded[len(loaded)-1]) == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")

	var mu sync.Mutex
	calls := 0

	w, err := NewWatcher(path, zaptest.NewLogger(t), func([]richtext.User) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	w.delay = 10 * time.Millisecond
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestWatcherDropsPendingReloadOnStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")

	var mu sync.Mutex
	calls := 0

	w, err := NewWatcher(path, zaptest.NewLogger(t), func([]richtext.User) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	w.delay = 300 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))
	time.Sleep(100 * time.Millisecond)

	cancel()
	<-done
	require.NoError(t, w.Close())
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}
