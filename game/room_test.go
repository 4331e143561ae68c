package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosMartins/Drinkster/models"
)

func testRoom(t *testing.T, players ...*Player) *GameRoom {
	t.Helper()
	require.NotEmpty(t, players)
	room := NewGameRoom("test room", false, "", players[0], models.ModeNormal, 5, true)
	for _, p := range players[1:] {
		room.AddPlayer(p)
	}
	return room
}

func soloChallenge(text string, sips int) *models.Challenge {
	return &models.Challenge{
		ID:      uuid.New(),
		Text:    text,
		Players: 1,
		Sips:    sips,
		Type:    models.TypeYouDrink,
	}
}

func TestNewGameRoomClearsPasswordWhenPublic(t *testing.T) {
	admin := testPlayer("admin", models.SexMale)
	room := NewGameRoom("open", false, "secret", admin, models.ModeNormal, 5, true)
	assert.Empty(t, room.Password)

	locked := NewGameRoom("locked", true, "secret", admin, models.ModeNormal, 5, true)
	assert.Equal(t, "secret", locked.Password)
}

func TestStartGameRequiresLobbyAndTwoPlayers(t *testing.T) {
	admin := testPlayer("admin", models.SexMale)
	room := testRoom(t, admin)

	assert.ErrorIs(t, room.StartGame(), ErrInvalidState)

	room.AddPlayer(testPlayer("b", models.SexFemale))
	require.NoError(t, room.StartGame())
	assert.Equal(t, models.RoomPlaying, room.State())

	// Already playing.
	assert.ErrorIs(t, room.StartGame(), ErrInvalidState)

	// Seed turn acts for index 0 and has no challenge yet.
	turn := room.CurrentTurn()
	require.NotNil(t, turn)
	assert.Equal(t, admin, turn.Player())
	assert.Nil(t, turn.Challenge())
}

func TestEndGameLifecycle(t *testing.T) {
	room := testRoom(t, testPlayer("a", models.SexMale), testPlayer("b", models.SexFemale))

	// LOBBY -> FINISHED is not a legal edge.
	assert.ErrorIs(t, room.EndGame(), ErrInvalidState)

	require.NoError(t, room.StartGame())
	require.NoError(t, room.EndGame())
	assert.Equal(t, models.RoomFinished, room.State())

	// FINISHED is terminal.
	assert.ErrorIs(t, room.EndGame(), ErrInvalidState)
}

func TestAddPlayerOnlyInLobby(t *testing.T) {
	room := testRoom(t, testPlayer("a", models.SexMale), testPlayer("b", models.SexFemale))
	require.NoError(t, room.StartGame())

	room.AddPlayer(testPlayer("late", models.SexAll))
	assert.Equal(t, 2, room.PlayerCount())
}

func TestNextTurnRotatesRoundRobin(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	c := testPlayer("c", models.SexAll)
	room := testRoom(t, a, b, c)
	require.NoError(t, room.StartGame())

	require.NoError(t, room.NextTurn(soloChallenge("go {Player}", 2), false))
	assert.Equal(t, a, room.CurrentPlayer())

	expected := []*Player{b, c, a, b, c, a}
	for i, want := range expected {
		require.NoError(t, room.NextTurn(soloChallenge("go {Player}", 2), true), "turn %d", i)
		assert.Equal(t, want, room.CurrentPlayer(), "turn %d", i)
	}
	assert.Equal(t, 7, room.Round())
}

func TestNextTurnSubstitutesPlaceholders(t *testing.T) {
	a := testPlayer("alice", models.SexFemale)
	b := testPlayer("bob", models.SexMale)
	room := testRoom(t, a, b)
	require.NoError(t, room.StartGame())

	template := &models.Challenge{
		ID:      uuid.New(),
		Text:    "{Player} arm-wrestles {Player2} or drinks {sips}",
		Players: 2,
		Sips:    3,
		Type:    models.TypeBothDrink,
		Penalty: &models.Penalty{Text: "{Player} serves {Player2}", Rounds: 2},
	}
	require.NoError(t, room.NextTurn(template, false))

	turn := room.CurrentTurn()
	require.NotNil(t, turn.Challenge())
	assert.Equal(t, "alice arm-wrestles bob or drinks 3", turn.Challenge().Text)
	assert.Equal(t, "alice serves bob", turn.Challenge().Penalty.Text)
	assert.Equal(t, template.ID, turn.Challenge().ID)
	// The template itself is never mutated.
	assert.Contains(t, template.Text, "{Player}")
	assert.Contains(t, template.Penalty.Text, "{Player2}")
	assert.Equal(t, []*Player{a, b}, turn.AffectedPlayers())
}

func TestNextTurnIncompatibleSexRollsBack(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)
	require.NoError(t, room.StartGame())
	require.NoError(t, room.NextTurn(soloChallenge("warmup {Player}", 1), false))

	seeded := room.CurrentTurn()
	round := room.Round()

	// Acting would be b (FEMALE); a MALE-only slot cannot match.
	template := &models.Challenge{
		ID:      uuid.New(),
		Text:    "{Player} does pushups",
		Players: 1,
		Sexes:   []models.Sex{models.SexMale},
		Type:    models.TypeYouDrink,
	}
	err := room.NextTurn(template, true)
	assert.ErrorIs(t, err, errIncompatibleChallenge)

	// Index, turn, round and history are untouched so the caller can redraw.
	assert.Equal(t, a, room.CurrentPlayer())
	assert.Same(t, seeded, room.CurrentTurn())
	assert.Equal(t, round, room.Round())
	assert.False(t, room.History().Contains(template.ID))
}

func TestNextTurnTwoPlayerSexConstraints(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)
	require.NoError(t, room.StartGame())

	// Slot 0 MALE, slot 1 FEMALE fits a acting with b as the partner.
	ok := &models.Challenge{
		ID:      uuid.New(),
		Text:    "{Player} and {Player2}",
		Players: 2,
		Sexes:   []models.Sex{models.SexMale, models.SexFemale},
		Type:    models.TypeBothDrink,
	}
	require.NoError(t, room.NextTurn(ok, false))

	// Slot 1 MALE cannot match when the only partner is FEMALE.
	bad := &models.Challenge{
		ID:      uuid.New(),
		Text:    "{Player} and {Player2}",
		Players: 2,
		Sexes:   []models.Sex{models.SexMale, models.SexMale},
		Type:    models.TypeBothDrink,
	}
	// Acting rotates to b, whose slot 0 is MALE-only anyway.
	assert.ErrorIs(t, room.NextTurn(bad, true), errIncompatibleChallenge)
}

func TestHandleChallengeCompletion(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)
	require.NoError(t, room.StartGame())

	template := soloChallenge("drink {sips} {Player}", 4)
	template.Penalty = &models.Penalty{Text: "no talking", Rounds: 2}
	require.NoError(t, room.NextTurn(template, false))

	room.HandleChallengeCompletion(true)
	assert.Equal(t, 4, a.Drinks())
	assert.Empty(t, a.Penalties())

	room.HandleChallengeCompletion(false)
	penalties := a.Penalties()
	require.Len(t, penalties, 1)
	assert.Equal(t, 2, penalties[0].Rounds)
	// The bystander is outside the affected set.
	assert.Empty(t, b.Penalties())
}

func TestSettleTurnAppliesRecordedResponses(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)
	require.NoError(t, room.StartGame())

	template := &models.Challenge{
		ID:      uuid.New(),
		Text:    "both of you",
		Players: 2,
		Sips:    3,
		Type:    models.TypeBothDrink,
		Penalty: &models.Penalty{Text: "sing a song", Rounds: 1},
	}
	require.NoError(t, room.NextTurn(template, false))

	turn := room.CurrentTurn()
	turn.RegisterResponse(a.ID, true)
	turn.RegisterResponse(b.ID, false)
	room.SettleTurn()

	assert.Equal(t, 3, a.Drinks())
	assert.Empty(t, a.Penalties())
	assert.Equal(t, 0, b.Drinks())
	require.Len(t, b.Penalties(), 1)

	// Each player gets an independent penalty copy.
	bPenalty := b.Penalties()[0]
	assert.Equal(t, 1, bPenalty.Rounds)
}

func TestDecayPenaltiesDropsExpired(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)

	a.AddPenalty(&models.Penalty{Text: "one round", Rounds: 1})
	a.AddPenalty(&models.Penalty{Text: "two rounds", Rounds: 2})
	b.AddPenalty(&models.Penalty{Text: "other", Rounds: 3})

	room.DecayPenalties()

	require.Len(t, a.Penalties(), 1)
	assert.Equal(t, "two rounds", a.Penalties()[0].Text)
	assert.Equal(t, 1, a.Penalties()[0].Rounds)
	require.Len(t, b.Penalties(), 1)
	assert.Equal(t, 2, b.Penalties()[0].Rounds)

	room.DecayPenalties()
	assert.Empty(t, a.Penalties())
}

func TestRemovePlayerAdjustsCurrentIndex(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	c := testPlayer("c", models.SexAll)
	room := testRoom(t, a, b, c)
	require.NoError(t, room.StartGame())

	// Advance so c is acting, then remove a player before the pointer.
	require.NoError(t, room.NextTurn(soloChallenge("x {Player}", 1), false))
	require.NoError(t, room.NextTurn(soloChallenge("x {Player}", 1), true))
	require.NoError(t, room.NextTurn(soloChallenge("x {Player}", 1), true))
	require.Equal(t, c, room.CurrentPlayer())

	room.RemovePlayer(a.ID)
	assert.Equal(t, c, room.CurrentPlayer())

	// Removing the acting player at the tail wraps the pointer to zero.
	room.RemovePlayer(c.ID)
	assert.Equal(t, b, room.CurrentPlayer())
}

func TestRandomOtherPlayerExcludesSelf(t *testing.T) {
	a := testPlayer("a", models.SexMale)
	b := testPlayer("b", models.SexFemale)
	room := testRoom(t, a, b)

	for i := 0; i < 20; i++ {
		assert.Equal(t, b, room.RandomOtherPlayer(a))
	}

	solo := testRoom(t, testPlayer("only", models.SexAll))
	assert.Nil(t, solo.RandomOtherPlayer(solo.Admin()))
}
