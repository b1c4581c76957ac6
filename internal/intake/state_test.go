package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceHappyPath(t *testing.T) {
	now := time.Now()
	st := newState("conv-1", now)

	require.Equal(t, StepGreeting, st.Step)
	assert.False(t, st.IsComplete())
	assert.Equal(t, []string{"name", "age", "phone", "details"}, st.MissingFields())

	require.True(t, st.advance("John Doe", now))
	assert.Equal(t, StepCollectingAge, st.Step)
	assert.Equal(t, "John Doe", st.Patient.Name)
	assert.False(t, st.IsComplete())

	require.True(t, st.advance("25 years old", now))
	assert.Equal(t, StepCollectingPhone, st.Step)
	require.NotNil(t, st.Patient.Age)
	assert.Equal(t, 25, *st.Patient.Age)

	require.True(t, st.advance("987-654-3210", now))
	assert.Equal(t, StepCollectingDetails, st.Step)
	assert.Equal(t, "9876543210", st.Patient.Phone)

	require.True(t, st.advance("persistent cough and mild fever", now))
	assert.Equal(t, StepCompleted, st.Step)
	assert.True(t, st.IsComplete())
	assert.Empty(t, st.MissingFields())
}

func TestAdvanceFailureKeepsStep(t *testing.T) {
	now := time.Now()
	st := newState("conv-2", now)

	require.True(t, st.advance("John Doe", now))
	require.Equal(t, StepCollectingAge, st.Step)

	// Not an age: state must not move or collect anything.
	assert.False(t, st.advance("not a number", now))
	assert.Equal(t, StepCollectingAge, st.Step)
	assert.Nil(t, st.Patient.Age)
}

func TestAdvanceCompletedIsTerminal(t *testing.T) {
	now := time.Now()
	st := newState("conv-3", now)

	require.True(t, st.advance("John Doe", now))
	require.True(t, st.advance("31", now))
	require.True(t, st.advance("9876543210", now))
	require.True(t, st.advance("chest pain when climbing stairs", now))
	require.Equal(t, StepCompleted, st.Step)

	before := *st
	assert.False(t, st.advance("anything else", now.Add(time.Minute)))
	assert.Equal(t, before.Step, st.Step)
	assert.Equal(t, before.Patient, st.Patient)
}

func TestApplyStampsTimestamps(t *testing.T) {
	start := time.Now()
	st := newState("conv-4", start)

	later := start.Add(5 * time.Second)
	st.apply(SetName("Asha Patel"), later)

	assert.Equal(t, "Asha Patel", st.Patient.Name)
	require.NotNil(t, st.Patient.CollectedAt)
	assert.Equal(t, later, *st.Patient.CollectedAt)
	assert.Equal(t, later, st.LastUpdated)

	evenLater := later.Add(5 * time.Second)
	st.apply(SetAge(40), evenLater)
	require.NotNil(t, st.Patient.Age)
	assert.Equal(t, 40, *st.Patient.Age)
	// Only the age changed; the name stays put.
	assert.Equal(t, "Asha Patel", st.Patient.Name)
	assert.Equal(t, evenLater, st.LastUpdated)
}

func TestMissingFieldsOrder(t *testing.T) {
	now := time.Now()
	st := newState("conv-5", now)

	require.True(t, st.advance("John Doe", now))
	assert.Equal(t, []string{"age", "phone", "details"}, st.MissingFields())

	require.True(t, st.advance("25", now))
	assert.Equal(t, []string{"phone", "details"}, st.MissingFields())
}
