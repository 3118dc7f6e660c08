package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundSequence(t *testing.T) {
	require.Equal(t, []Round{RoundOf16, QuarterFinal, SemiFinal, Final}, Rounds)

	next, ok := RoundOf16.Next()
	require.True(t, ok)
	assert.Equal(t, QuarterFinal, next)

	next, ok = QuarterFinal.Next()
	require.True(t, ok)
	assert.Equal(t, SemiFinal, next)

	next, ok = SemiFinal.Next()
	require.True(t, ok)
	assert.Equal(t, Final, next)

	_, ok = Final.Next()
	assert.False(t, ok, "the Final feeds nothing")
}

func TestRoundPrevious(t *testing.T) {
	_, ok := RoundOf16.Previous()
	assert.False(t, ok)

	prev, ok := Final.Previous()
	require.True(t, ok)
	assert.Equal(t, SemiFinal, prev)
}

func TestRoundMatchCount(t *testing.T) {
	assert.Equal(t, 8, RoundOf16.MatchCount())
	assert.Equal(t, 4, QuarterFinal.MatchCount())
	assert.Equal(t, 2, SemiFinal.MatchCount())
	assert.Equal(t, 1, Final.MatchCount())
}

func TestParseRound(t *testing.T) {
	r, err := ParseRound("quarter_final")
	require.NoError(t, err)
	assert.Equal(t, QuarterFinal, r)

	_, err = ParseRound("octavos")
	assert.Error(t, err)

	_, err = ParseRound("")
	assert.Error(t, err)
}
