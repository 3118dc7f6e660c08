package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixteenTeams() []int64 {
	ids := make([]int64, 16)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func TestRandomizeCoversEveryTeamOnce(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewSource(42)))

	for trial := 0; trial < 50; trial++ {
		pairings, err := seeder.Randomize(sixteenTeams())
		require.NoError(t, err)
		require.Len(t, pairings, 8)

		seen := make(map[int64]int)
		for _, p := range pairings {
			assert.NotEqual(t, p.HomeTeamID, p.AwayTeamID)
			seen[p.HomeTeamID]++
			seen[p.AwayTeamID]++
		}
		require.Len(t, seen, 16)
		for id, n := range seen {
			assert.Equal(t, 1, n, "team %d", id)
		}
	}
}

func TestRandomizeRejectsWrongPoolSize(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewSource(1)))

	_, err := seeder.Randomize(sixteenTeams()[:15])
	assert.ErrorIs(t, err, ErrInvalidSeedCount)

	_, err = seeder.Randomize(append(sixteenTeams(), 17))
	assert.ErrorIs(t, err, ErrInvalidSeedCount)

	_, err = seeder.Randomize(nil)
	assert.ErrorIs(t, err, ErrInvalidSeedCount)
}

func TestRandomizeRejectsDuplicateTeams(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewSource(1)))

	ids := sixteenTeams()
	ids[15] = ids[0]
	_, err := seeder.Randomize(ids)
	assert.ErrorIs(t, err, ErrInvalidSeedCount)
}

func TestRandomizeDoesNotMutateInput(t *testing.T) {
	seeder := NewSeeder(rand.New(rand.NewSource(7)))

	ids := sixteenTeams()
	_, err := seeder.Randomize(ids)
	require.NoError(t, err)
	assert.Equal(t, sixteenTeams(), ids)
}

func validPairings() []Pairing {
	pairings := make([]Pairing, 8)
	for i := range pairings {
		pairings[i] = Pairing{HomeTeamID: int64(2*i + 1), AwayTeamID: int64(2*i + 2)}
	}
	return pairings
}

func TestValidatePairings(t *testing.T) {
	assert.NoError(t, ValidatePairings(validPairings()))
}

func TestValidatePairingsRejectsWrongCount(t *testing.T) {
	err := ValidatePairings(validPairings()[:7])
	assert.ErrorIs(t, err, ErrInvalidPairing)
}

func TestValidatePairingsRejectsSelfPairing(t *testing.T) {
	pairings := validPairings()
	pairings[3].AwayTeamID = pairings[3].HomeTeamID

	err := ValidatePairings(pairings)
	require.ErrorIs(t, err, ErrInvalidPairing)
	assert.Contains(t, err.Error(), "slot 4")
}

func TestValidatePairingsRejectsDuplicateTeam(t *testing.T) {
	// Team 7 plays twice, team 12 never: both violations at once.
	pairings := validPairings()
	pairings[5].AwayTeamID = 7 // was 12

	err := ValidatePairings(pairings)
	require.ErrorIs(t, err, ErrInvalidPairing)
	assert.Contains(t, err.Error(), "team 7")
}
