package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	// TeamCount is the only pool size the bracket supports.
	TeamCount = 16
	// PairingCount is the number of Round-of-16 fixtures.
	PairingCount = 8
)

var (
	ErrInvalidSeedCount = errors.New("seeding requires exactly 16 teams")
	ErrInvalidPairing   = errors.New("invalid pairing")
)

// Pairing is one Round-of-16 fixture produced by seeding.
type Pairing struct {
	HomeTeamID int64 `json:"home_team_id"`
	AwayTeamID int64 `json:"away_team_id"`
}

// Seeder produces first-round pairings from a team pool.
type Seeder struct {
	rng *rand.Rand
}

// NewSeeder returns a Seeder drawing from rng. A nil rng falls back to a
// time-seeded source; tests pass a fixed seed for reproducible draws.
func NewSeeder(rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Seeder{rng: rng}
}

// Randomize shuffles exactly 16 distinct team ids uniformly and pairs them
// consecutively: positions (0,1), (2,3), ... (14,15) after the shuffle.
func (s *Seeder) Randomize(teamIDs []int64) ([]Pairing, error) {
	if len(teamIDs) != TeamCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeedCount, len(teamIDs))
	}
	seen := make(map[int64]struct{}, TeamCount)
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate team %d in pool", ErrInvalidSeedCount, id)
		}
		seen[id] = struct{}{}
	}

	shuffled := make([]int64, TeamCount)
	copy(shuffled, teamIDs)
	s.rng.Shuffle(TeamCount, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairings := make([]Pairing, 0, PairingCount)
	for i := 0; i < TeamCount; i += 2 {
		pairings = append(pairings, Pairing{
			HomeTeamID: shuffled[i],
			AwayTeamID: shuffled[i+1],
		})
	}
	return pairings, nil
}

// ValidatePairings checks a manually curated draw: exactly 8 pairs, no team
// facing itself, and every team id appearing exactly once across the draw.
// Violations name the offending 1-based slot.
func ValidatePairings(pairings []Pairing) error {
	if len(pairings) != PairingCount {
		return fmt.Errorf("%w: expected %d pairs, got %d", ErrInvalidPairing, PairingCount, len(pairings))
	}
	seen := make(map[int64]int, TeamCount) // team id -> slot first seen at
	for i, p := range pairings {
		slot := i + 1
		if p.HomeTeamID == p.AwayTeamID {
			return fmt.Errorf("%w: slot %d pairs team %d against itself", ErrInvalidPairing, slot, p.HomeTeamID)
		}
		for _, id := range []int64{p.HomeTeamID, p.AwayTeamID} {
			if first, dup := seen[id]; dup {
				return fmt.Errorf("%w: team %d appears in slot %d and slot %d", ErrInvalidPairing, id, first, slot)
			}
			seen[id] = slot
		}
	}
	return nil
}
