package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(Config{
		Records: happyRecords(),
		Drafts:  draft.NewRecords(draft.NewMemoryStore()),
	})

	w := m.Create()
	assert.NotEmpty(t, w.ID())
	assert.Equal(t, StateSignIn, w.State())

	got, ok := m.Get(w.ID())
	require.True(t, ok)
	assert.Same(t, w, got)

	other := m.Create()
	assert.NotEqual(t, w.ID(), other.ID())

	m.Drop(w.ID())
	_, ok = m.Get(w.ID())
	assert.False(t, ok)
}

func TestManager_CreateResumed(t *testing.T) {
	drafts := draft.NewRecords(draft.NewMemoryStore())
	m := NewManager(Config{Records: happyRecords(), Drafts: drafts})

	// No persisted session: starts at sign-in.
	w := m.CreateResumed()
	assert.Equal(t, StateSignIn, w.State())

	require.NoError(t, drafts.SaveDriverSession(models.DriverIdentity{Name: "Jane Doe", ID: "D-42"}))

	resumed := m.CreateResumed()
	assert.Equal(t, StateStartOfDay, resumed.State())
	assert.Equal(t, "D-42", resumed.Draft().Driver.ID)

	// The resumed session continues like a normal one.
	require.NoError(t, resumed.StartOfDay(context.Background(), truck7(), startRecord(100)))
	assert.Equal(t, StateEndOfDay, resumed.State())
}
