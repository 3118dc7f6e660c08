package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "failed to open in-memory DB")

	// The in-memory database lives and dies with its single connection.
	conn.SetMaxOpenConns(1)
	require.NoError(t, conn.Ping())

	driver, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	require.NoError(t, err, "failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance("file://../migrations", "sqlite3", driver)
	require.NoError(t, err, "failed to create migrate instance")

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "failed to apply migrations")
	}

	return conn
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type engineFixture struct {
	conn      *sql.DB
	service   TournamentService
	matchRepo repositories.MatchRepository
	teamIDs   []int64
	now       time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	conn := setupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	teamRepo := repositories.NewSQLiteTeamRepository(conn)
	teamIDs := make([]int64, 0, brackets.TeamCount)
	names := []string{
		"Aguilas", "Bravos", "Cometas", "Dragones", "Estrellas", "Faros",
		"Gladiadores", "Halcones", "Iberos", "Jaguares", "Kraken", "Leones",
		"Meteoros", "Nubes", "Olimpos", "Pumas",
	}
	for _, name := range names {
		team := &models.Team{Name: name}
		require.NoError(t, teamRepo.Create(context.Background(), team))
		teamIDs = append(teamIDs, team.ID)
	}

	matchRepo := repositories.NewSQLiteMatchRepository()
	seeder := brackets.NewSeeder(rand.New(rand.NewSource(99)))
	service := NewTournamentService(conn, matchRepo, teamRepo, seeder, nil, testLogger())

	fixedNow := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	service.(*tournamentService).now = func() time.Time { return fixedNow }

	return &engineFixture{
		conn:      conn,
		service:   service,
		matchRepo: matchRepo,
		teamIDs:   teamIDs,
		now:       fixedNow,
	}
}

// orderedPairings pairs the fixture teams in registration order, so tests can
// predict which team sits in which slot.
func (f *engineFixture) orderedPairings() []brackets.Pairing {
	pairings := make([]brackets.Pairing, 0, brackets.PairingCount)
	for i := 0; i < brackets.TeamCount; i += 2 {
		pairings = append(pairings, brackets.Pairing{
			HomeTeamID: f.teamIDs[i],
			AwayTeamID: f.teamIDs[i+1],
		})
	}
	return pairings
}

func (f *engineFixture) seedOrdered(t *testing.T) []*models.Match {
	t.Helper()
	matches, err := f.service.SeedManual(context.Background(), f.orderedPairings(), false)
	require.NoError(t, err)
	return matches
}

func (f *engineFixture) roundMatches(t *testing.T, round models.Round) []*models.Match {
	t.Helper()
	bracket, err := f.service.GetBracket(context.Background())
	require.NoError(t, err)
	return bracket.Rounds[round]
}

func TestSeedRandomCreatesOpeningRound(t *testing.T) {
	f := newEngineFixture(t)

	matches, err := f.service.SeedRandom(context.Background(), f.teamIDs, false)
	require.NoError(t, err)
	require.Len(t, matches, 8)

	seen := make(map[int64]int)
	for i, m := range matches {
		assert.Equal(t, models.RoundOf16, m.Round)
		assert.Equal(t, i+1, m.Slot)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		require.True(t, m.HasBothTeams())
		assert.NotEqual(t, *m.HomeTeamID, *m.AwayTeamID)
		seen[*m.HomeTeamID]++
		seen[*m.AwayTeamID]++
	}
	require.Len(t, seen, 16, "every team seeded exactly once")
}

func TestSeedAssignsTwoMatchesPerDay(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	// Clock frozen at 2026-04-10 12:00 UTC: play starts the next day, two
	// matches per day at 17:00 and 19:00.
	expected := []time.Time{
		time.Date(2026, 4, 11, 17, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 11, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 12, 17, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 13, 17, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 13, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 14, 17, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 14, 19, 0, 0, 0, time.UTC),
	}
	require.Len(t, matches, len(expected))
	for i, m := range matches {
		require.NotNil(t, m.KickoffTime)
		assert.True(t, m.KickoffTime.Equal(expected[i]),
			"slot %d kicks off at %v, got %v", i+1, expected[i], m.KickoffTime)
	}
}

func TestSeedRejectsWrongPoolSize(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.service.SeedRandom(context.Background(), f.teamIDs[:10], false)
	assert.ErrorIs(t, err, brackets.ErrInvalidSeedCount)

	empty := f.roundMatches(t, models.RoundOf16)
	assert.Empty(t, empty, "failed seeding leaves no matches behind")
}

func TestSeedRejectsUnknownTeams(t *testing.T) {
	f := newEngineFixture(t)

	ids := append([]int64{}, f.teamIDs...)
	ids[0] = 9999
	_, err := f.service.SeedRandom(context.Background(), ids, false)
	assert.ErrorIs(t, err, ErrUnknownTeams)
}

func TestSeedManualRejectsDuplicateAndMissingTeam(t *testing.T) {
	f := newEngineFixture(t)

	pairings := f.orderedPairings()
	// One team plays twice, another is left out entirely.
	pairings[5].AwayTeamID = pairings[3].HomeTeamID

	_, err := f.service.SeedManual(context.Background(), pairings, false)
	assert.ErrorIs(t, err, brackets.ErrInvalidPairing)
}

func TestReseedRefusedOncePlayed(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	_, err = f.service.SeedManual(context.Background(), f.orderedPairings(), false)
	assert.ErrorIs(t, err, ErrBracketAlreadyStarted)

	// Explicit confirmation wipes the whole bracket, derived rounds included.
	reseeded, err := f.service.SeedManual(context.Background(), f.orderedPairings(), true)
	require.NoError(t, err)
	assert.Len(t, reseeded, 8)
	assert.Empty(t, f.roundMatches(t, models.QuarterFinal))
	for _, m := range f.roundMatches(t, models.RoundOf16) {
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Nil(t, m.WinnerTeamID)
	}
}

func TestReseedWithoutResultsNeedsNoForce(t *testing.T) {
	f := newEngineFixture(t)
	f.seedOrdered(t)

	matches, err := f.service.SeedManual(context.Background(), f.orderedPairings(), false)
	require.NoError(t, err)
	assert.Len(t, matches, 8)
	assert.Len(t, f.roundMatches(t, models.RoundOf16), 8)
}

func TestRecordResultUnknownMatch(t *testing.T) {
	f := newEngineFixture(t)
	f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), 999, ResultInput{HomeScore: 1, AwayScore: 0})
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
}

func TestRecordResultHomeWinCreatesNextRoundPlaceholder(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	result, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, *matches[0].HomeTeamID, result.WinnerTeamID)
	assert.Equal(t, TransitionFirstRecording, result.Transition)
	require.NotNil(t, result.NextMatchID)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1)
	qf := quarters[0]
	assert.Equal(t, 1, qf.Slot)
	assert.Equal(t, models.MatchStatusPending, qf.Status)
	require.NotNil(t, qf.HomeTeamID)
	assert.Equal(t, result.WinnerTeamID, *qf.HomeTeamID, "odd slot winner takes the home side")
	assert.Nil(t, qf.AwayTeamID, "away side waits for the sibling match")
}

func TestRecordResultSiblingFillsAwaySide(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	first, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	second, err := f.service.RecordResult(context.Background(), matches[1].ID, ResultInput{HomeScore: 1, AwayScore: 3})
	require.NoError(t, err)
	assert.Equal(t, *matches[1].AwayTeamID, second.WinnerTeamID)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1, "both feeders share one next-round match")
	qf := quarters[0]
	require.NotNil(t, qf.HomeTeamID)
	require.NotNil(t, qf.AwayTeamID)
	assert.Equal(t, first.WinnerTeamID, *qf.HomeTeamID, "home side unchanged from the first propagation")
	assert.Equal(t, second.WinnerTeamID, *qf.AwayTeamID, "even slot winner takes the away side")
}

func TestRecordResultUnresolvedTie(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	pens := 4
	for _, input := range []ResultInput{
		{HomeScore: 2, AwayScore: 2},
		{HomeScore: 2, AwayScore: 2, HomePenalties: &pens, AwayPenalties: &pens},
	} {
		_, err := f.service.RecordResult(context.Background(), matches[0].ID, input)
		assert.ErrorIs(t, err, ErrUnresolvedTie)
	}

	// Bracket state untouched on failure.
	assert.Empty(t, f.roundMatches(t, models.QuarterFinal))
	m, err := f.matchRepo.GetByID(context.Background(), f.conn, matches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, m.Status)
	assert.Nil(t, m.HomeScore)
}

func TestRecordResultPenaltyShootout(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	homePens, awayPens := 5, 4
	result, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{
		HomeScore: 1, AwayScore: 1, HomePenalties: &homePens, AwayPenalties: &awayPens,
	})
	require.NoError(t, err)
	assert.Equal(t, *matches[0].HomeTeamID, result.WinnerTeamID)

	m, err := f.matchRepo.GetByID(context.Background(), f.conn, matches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPlayed, m.Status)
	require.NotNil(t, m.HomePenalties)
	assert.Equal(t, 5, *m.HomePenalties)
	require.NotNil(t, m.AwayPenalties)
	assert.Equal(t, 4, *m.AwayPenalties)
}

func TestRecordResultDiscardsPenaltiesOnDecisiveScore(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	homePens, awayPens := 5, 3
	result, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{
		HomeScore: 3, AwayScore: 1, HomePenalties: &homePens, AwayPenalties: &awayPens,
	})
	require.NoError(t, err)
	assert.Equal(t, *matches[0].HomeTeamID, result.WinnerTeamID)

	m, err := f.matchRepo.GetByID(context.Background(), f.conn, matches[0].ID)
	require.NoError(t, err)
	assert.Nil(t, m.HomePenalties, "penalties are not applicable and not stored")
	assert.Nil(t, m.AwayPenalties)
}

func TestRecordResultRejectsNegativeScores(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: -1, AwayScore: 0})
	assert.ErrorIs(t, err, ErrInvalidScore)

	neg := -2
	_, err = f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 1, AwayScore: 1, HomePenalties: &neg, AwayPenalties: &neg})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestRecordResultOnHalfFilledMatch(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1)

	_, err = f.service.RecordResult(context.Background(), quarters[0].ID, ResultInput{HomeScore: 1, AwayScore: 0})
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestRecordResultOnCancelledMatch(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	require.NoError(t, f.matchRepo.UpdateStatus(context.Background(), f.conn, matches[0].ID, models.MatchStatusCancelled))

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	assert.ErrorIs(t, err, ErrMatchCancelled)
}

func TestPropagationIdempotentOnRepeat(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	first, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	repeat, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, TransitionCorrection, repeat.Transition)
	assert.Equal(t, first.WinnerTeamID, repeat.WinnerTeamID)
	assert.Equal(t, *first.NextMatchID, *repeat.NextMatchID)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1, "no duplicate next-round match")
	require.NotNil(t, quarters[0].HomeTeamID)
	assert.Equal(t, first.WinnerTeamID, *quarters[0].HomeTeamID)
	assert.Nil(t, quarters[0].AwayTeamID)
}

func TestCorrectionMovesWinnerSlot(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	corrected, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 0, AwayScore: 2})
	require.NoError(t, err)
	assert.Equal(t, TransitionCorrection, corrected.Transition)
	assert.Equal(t, *matches[0].AwayTeamID, corrected.WinnerTeamID)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1)
	require.NotNil(t, quarters[0].HomeTeamID)
	assert.Equal(t, corrected.WinnerTeamID, *quarters[0].HomeTeamID, "corrected winner replaces the stale slot")
}

func TestCorrectionRefusedOnceNextMatchPlayed(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)
	ctx := context.Background()

	_, err := f.service.RecordResult(ctx, matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	_, err = f.service.RecordResult(ctx, matches[1].ID, ResultInput{HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 1)
	qfResult, err := f.service.RecordResult(ctx, quarters[0].ID, ResultInput{HomeScore: 2, AwayScore: 3})
	require.NoError(t, err)

	// The quarter final is decided; flipping a feeder's winner would leave it
	// won by a team that no longer sits on either side.
	_, err = f.service.RecordResult(ctx, matches[0].ID, ResultInput{HomeScore: 0, AwayScore: 2})
	assert.ErrorIs(t, err, ErrNextMatchPlayed)

	// The refused correction rolls back entirely, feeder included.
	r16, err := f.matchRepo.GetByID(ctx, f.conn, matches[0].ID)
	require.NoError(t, err)
	require.NotNil(t, r16.HomeScore)
	assert.Equal(t, 2, *r16.HomeScore)
	require.NotNil(t, r16.WinnerTeamID)
	assert.Equal(t, *matches[0].HomeTeamID, *r16.WinnerTeamID)

	qf, err := f.matchRepo.GetByID(ctx, f.conn, quarters[0].ID)
	require.NoError(t, err)
	require.NotNil(t, qf.WinnerTeamID)
	assert.Equal(t, qfResult.WinnerTeamID, *qf.WinnerTeamID)
	require.NotNil(t, qf.HomeTeamID)
	assert.Equal(t, *matches[0].HomeTeamID, *qf.HomeTeamID, "played match keeps its original sides")
	assert.True(t,
		*qf.WinnerTeamID == *qf.HomeTeamID || *qf.WinnerTeamID == *qf.AwayTeamID,
		"winner is one of the match's own sides")

	// Re-recording the identical result leaves the advanced side unchanged
	// and is still accepted.
	repeat, err := f.service.RecordResult(ctx, matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, TransitionCorrection, repeat.Transition)
	require.NotNil(t, repeat.NextMatchID)
	assert.Equal(t, quarters[0].ID, *repeat.NextMatchID)
}

func TestSiblingOrderDoesNotMatter(t *testing.T) {
	run := func(t *testing.T, firstSlotIdx, secondSlotIdx int) (home, away int64) {
		f := newEngineFixture(t)
		matches := f.seedOrdered(t)

		_, err := f.service.RecordResult(context.Background(), matches[firstSlotIdx].ID, ResultInput{HomeScore: 1, AwayScore: 0})
		require.NoError(t, err)
		_, err = f.service.RecordResult(context.Background(), matches[secondSlotIdx].ID, ResultInput{HomeScore: 1, AwayScore: 0})
		require.NoError(t, err)

		quarters := f.roundMatches(t, models.QuarterFinal)
		require.Len(t, quarters, 1)
		require.True(t, quarters[0].HasBothTeams())
		return *quarters[0].HomeTeamID, *quarters[0].AwayTeamID
	}

	h1, a1 := run(t, 0, 1)
	h2, a2 := run(t, 1, 0)
	assert.Equal(t, h1, h2, "home side identical regardless of play order")
	assert.Equal(t, a1, a2, "away side identical regardless of play order")
}

func TestFullTournamentProducesOneChampion(t *testing.T) {
	f := newEngineFixture(t)
	f.seedOrdered(t)
	ctx := context.Background()

	// Round of 16 recorded out of order; home side always wins 2-0.
	for _, idx := range []int{4, 0, 7, 2, 6, 1, 3, 5} {
		matches := f.roundMatches(t, models.RoundOf16)
		_, err := f.service.RecordResult(ctx, matches[idx].ID, ResultInput{HomeScore: 2, AwayScore: 0})
		require.NoError(t, err)
	}

	quarters := f.roundMatches(t, models.QuarterFinal)
	require.Len(t, quarters, 4)
	for i, m := range quarters {
		assert.Equal(t, i+1, m.Slot)
		require.True(t, m.HasBothTeams(), "quarter final slot %d complete", m.Slot)
		_, err := f.service.RecordResult(ctx, m.ID, ResultInput{HomeScore: 1, AwayScore: 0})
		require.NoError(t, err)
	}

	semis := f.roundMatches(t, models.SemiFinal)
	require.Len(t, semis, 2)
	for _, m := range semis {
		require.True(t, m.HasBothTeams())
		_, err := f.service.RecordResult(ctx, m.ID, ResultInput{HomeScore: 0, AwayScore: 1})
		require.NoError(t, err)
	}

	finals := f.roundMatches(t, models.Final)
	require.Len(t, finals, 1, "exactly one Final")
	final := finals[0]
	assert.Equal(t, 1, final.Slot)
	require.True(t, final.HasBothTeams())

	champion, err := f.service.Champion(ctx)
	require.NoError(t, err)
	assert.Nil(t, champion, "no champion before the Final is played")

	result, err := f.service.RecordResult(ctx, final.ID, ResultInput{HomeScore: 3, AwayScore: 2})
	require.NoError(t, err)
	assert.Nil(t, result.NextMatchID, "the Final feeds no further match")

	champion, err = f.service.Champion(ctx)
	require.NoError(t, err)
	require.NotNil(t, champion)
	assert.Equal(t, result.WinnerTeamID, *champion)

	// 8 + 4 + 2 + 1 matches, nothing beyond the Final.
	all, err := f.matchRepo.List(ctx, f.conn, repositories.MatchFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestGetBracketBeforeSeeding(t *testing.T) {
	f := newEngineFixture(t)

	bracket, err := f.service.GetBracket(context.Background())
	require.NoError(t, err)
	require.Len(t, bracket.Rounds, 4)
	for _, round := range models.Rounds {
		matches, ok := bracket.Rounds[round]
		require.True(t, ok, "round %s present", round)
		assert.Empty(t, matches)
	}
}

func TestResetClearsBracket(t *testing.T) {
	f := newEngineFixture(t)
	matches := f.seedOrdered(t)

	_, err := f.service.RecordResult(context.Background(), matches[0].ID, ResultInput{HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)

	require.NoError(t, f.service.Reset(context.Background()))

	for _, round := range models.Rounds {
		assert.Empty(t, f.roundMatches(t, round))
	}

	// A fresh seeding starts clean.
	assert.Len(t, f.seedOrdered(t), 8)
}
