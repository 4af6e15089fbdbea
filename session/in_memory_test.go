package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scriptmesh/core"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedStore(idle time.Duration) (*InMemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryStore(func(o *Options) {
		o.IdleTimeout = idle
		o.Now = clock.Now
	})
	return store, clock
}

func taskWithMetadata(id, sessionID string, metadata map[string]any) *core.Task {
	return core.NewTask(id, sessionID, core.NewTextMessage("assistant", "Starting script generation..."), metadata)
}

func TestInMemoryStore_GetOrCreate(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)

	again, err := store.GetOrCreate("s1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)

	// Returned sessions are snapshots.
	again.TaskIDs = append(again.TaskIDs, "t1")
	fresh, err := store.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.TaskIDs)
}

func TestInMemoryStore_GetUnknownIsNil(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestInMemoryStore_AddTaskFoldsThemes(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetOrCreate("s1")
	require.NoError(t, err)

	require.NoError(t, store.AddTask(taskWithMetadata("t1", "s1", map[string]any{
		"title": "High Seas Adventure",
		"idea":  "A romance blooms aboard a doomed freighter",
		"tags":  []string{"drama"},
	})))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, sess.TaskIDs)
	assert.ElementsMatch(t, []string{"adventure", "romance", "drama"}, sess.Context.Themes)

	// Re-detected themes are not duplicated.
	require.NoError(t, store.AddTask(taskWithMetadata("t2", "s1", map[string]any{
		"title": "Another Adventure",
	})))
	sess, err = store.Get("s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"adventure", "romance", "drama"}, sess.Context.Themes)
	assert.Equal(t, []string{"t1", "t2"}, sess.TaskIDs)
}

func TestInMemoryStore_AddTaskWithoutSessionIsNoOp(t *testing.T) {
	store := NewInMemoryStore()

	require.NoError(t, store.AddTask(taskWithMetadata("t1", "", nil)))
	require.NoError(t, store.AddTask(nil))
}

func TestInMemoryStore_RecordCompletionTruncatesAndBounds(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetOrCreate("s1")
	require.NoError(t, err)

	long := strings.Repeat("FADE IN: a very long opening. ", 20)
	require.NoError(t, store.RecordCompletion("s1", "Pilot", long))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	require.Len(t, sess.Context.PreviousScripts, 1)
	assert.Equal(t, "Pilot", sess.Context.PreviousScripts[0].Title)
	assert.LessOrEqual(t, len(sess.Context.PreviousScripts[0].Summary), 203) // 200 runes + "..."
	assert.True(t, strings.HasSuffix(sess.Context.PreviousScripts[0].Summary, "..."))

	// Only the most recent five summaries survive.
	for i := 0; i < 7; i++ {
		require.NoError(t, store.RecordCompletion("s1", "Episode", "short summary"))
	}
	sess, err = store.Get("s1")
	require.NoError(t, err)
	require.Len(t, sess.Context.PreviousScripts, 5)
	for _, prev := range sess.Context.PreviousScripts {
		assert.Equal(t, "Episode", prev.Title)
	}
}

func TestInMemoryStore_RecordCompletionAfterExpiryIsNoOp(t *testing.T) {
	store, clock := newClockedStore(30 * time.Minute)

	_, err := store.GetOrCreate("s1")
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	require.NoError(t, store.RecordCompletion("s1", "Late", "arrived after expiry"))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.Nil(t, sess, "expired session should not be revived by a completion")
}

func TestInMemoryStore_IdleExpiry(t *testing.T) {
	store, clock := newClockedStore(30 * time.Minute)

	_, err := store.GetOrCreate("s1")
	require.NoError(t, err)

	// Activity inside the window keeps the session alive.
	clock.Advance(20 * time.Minute)
	require.NoError(t, store.AddTask(taskWithMetadata("t1", "s1", nil)))

	clock.Advance(20 * time.Minute)
	sess, err := store.Get("s1")
	require.NoError(t, err)
	require.NotNil(t, sess, "activity should have refreshed the window")

	// Get does not refresh activity, so the window eventually closes.
	clock.Advance(31 * time.Minute)
	sess, err = store.Get("s1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}
