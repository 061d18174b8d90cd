package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func selectedIDs(s *Store) []string {
	var out []string
	for _, it := range s.Selected() {
		out = append(out, it.ID)
	}
	return out
}

func TestSelection(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Store, *memStorage) {
		t.Helper()
		storage := newMemStorage()
		storage.data[StorageKey("alice")] = []byte(`[{"id":"A","remoteLineId":"ra"},{"id":"B","remoteLineId":"rb"}]`)
		return newTestStore(t, storage, &SynchronizerMock{}), storage
	}

	t.Run("first toggle selects", func(t *testing.T) {
		s, _ := seed(t)

		assert.True(t, s.Toggle(ctx, "A"))
		assert.False(t, s.Toggle(ctx, "A"))
		assert.True(t, s.Toggle(ctx, "A"))
		assert.Equal(t, []string{"A"}, selectedIDs(s))
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		s, _ := seed(t)

		assert.False(t, s.Toggle(ctx, "ghost"))
		assert.False(t, s.IsSelected("ghost"))
		assert.Empty(t, selectedIDs(s))
	})

	t.Run("select all and deselect all", func(t *testing.T) {
		s, _ := seed(t)

		s.SelectAll(ctx)
		assert.Equal(t, []string{"A", "B"}, selectedIDs(s))

		s.DeselectAll(ctx)
		assert.Empty(t, selectedIDs(s))
	})

	t.Run("removing a selected item prunes it", func(t *testing.T) {
		s, _ := seed(t)
		s.Toggle(ctx, "B")

		require.NoError(t, s.Remove(ctx, "B"))
		assert.Empty(t, selectedIDs(s))
		assert.False(t, s.IsSelected("A"))
	})

	t.Run("removing an unselected item keeps the rest", func(t *testing.T) {
		s, _ := seed(t)
		s.Toggle(ctx, "A")

		require.NoError(t, s.Remove(ctx, "B"))
		assert.Equal(t, []string{"A"}, selectedIDs(s))
	})

	t.Run("selection survives reload", func(t *testing.T) {
		s, storage := seed(t)
		s.Toggle(ctx, "B")

		reloaded := NewStore(ctx, "alice", storage, &SynchronizerMock{}, zap.NewNop())
		assert.Equal(t, []string{"B"}, selectedIDs(reloaded))
	})

	t.Run("failed remove keeps selection", func(t *testing.T) {
		storage := newMemStorage()
		storage.data[StorageKey("alice")] = []byte(`[{"id":"A","remoteLineId":"ra"}]`)
		s := newTestStore(t, storage, &SynchronizerMock{DeleteRemoteLineFunc: func(context.Context, string) error {
			return errors.New("503")
		}})
		s.SelectAll(ctx)

		require.Error(t, s.Remove(ctx, "A"))
		assert.Equal(t, []string{"A"}, selectedIDs(s))
	})
}

func TestLineState(t *testing.T) {
	tests := map[string]struct {
		from, to LineState
		ok       bool
	}{
		"create confirmed":      {StatePendingCreate, StateSynced, true},
		"create failed":         {StatePendingCreate, StateDeleted, true},
		"delete requested":      {StateSynced, StatePendingDelete, true},
		"delete confirmed":      {StatePendingDelete, StateDeleted, true},
		"delete failed":         {StatePendingDelete, StateSynced, true},
		"deleted is terminal":   {StateDeleted, StateSynced, false},
		"cannot skip to delete": {StatePendingCreate, StatePendingDelete, false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			it := Item{ID: "x", State: tc.from}
			err := it.transition(tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, it.State)
				return
			}
			require.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tc.from, it.State)
		})
	}

	assert.True(t, StateDeleted.IsTerminal())
	assert.False(t, StateSynced.IsTerminal())
}
