package intake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIdempotent(t *testing.T) {
	store := NewStore()

	first := store.GetOrCreate("conv-1")
	second := store.GetOrCreate("conv-1")

	assert.Equal(t, first.Step, second.Step)
	assert.Equal(t, first.Patient, second.Patient)
	assert.Equal(t, first.StartedAt, second.StartedAt)
	assert.Equal(t, 1, store.Len())
}

func TestAdvanceThroughStore(t *testing.T) {
	store := NewStore()

	state, changed := store.Advance("conv-1", "John Doe")
	require.True(t, changed)
	assert.Equal(t, StepCollectingAge, state.Step)

	// Snapshot semantics: mutating the returned copy must not leak back.
	state.Patient.Name = "tampered"
	again := store.GetOrCreate("conv-1")
	assert.Equal(t, "John Doe", again.Patient.Name)
}

func TestReset(t *testing.T) {
	store := NewStore()

	_, changed := store.Advance("conv-1", "John Doe")
	require.True(t, changed)

	state := store.Reset("conv-1")
	assert.Equal(t, StepGreeting, state.Step)
	assert.Empty(t, state.Patient.Name)
	assert.Equal(t, []string{"name", "age", "phone", "details"}, state.MissingFields())
}

func TestEvictOlderThan(t *testing.T) {
	store := NewStore()

	old := time.Now().Add(-48 * time.Hour)
	store.now = func() time.Time { return old }
	store.GetOrCreate("stale")

	store.now = time.Now
	store.GetOrCreate("fresh")

	removed := store.EvictOlderThan(DefaultMaxAge)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	// The fresh conversation survives with its state intact.
	fresh := store.GetOrCreate("fresh")
	assert.Equal(t, StepGreeting, fresh.Step)
}

func TestConcurrentCreate(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%10))
			store.GetOrCreate(id)
			store.Advance(id, "John Doe")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, store.Len())
}
