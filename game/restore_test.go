package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosMartins/Drinkster/models"
)

func TestRestoreInLobby(t *testing.T) {
	reg := NewRegistry()
	admin := testPlayer("admin", models.SexMale)
	room, err := reg.CreateRoom("room", false, "", admin, models.ModeNormal, 5, true)
	require.NoError(t, err)
	b := testPlayer("b", models.SexFemale)
	require.NoError(t, reg.JoinRoom(room.ID, b))

	sr := NewSessionRestorer(reg)
	result, err := sr.Restore(room.ID, b.ID, "fresh-session")
	require.NoError(t, err)

	// The session handle is rebound to the new connection.
	assert.Equal(t, "fresh-session", b.SessionID())

	assert.Equal(t, b.ID, result.Self.ID)
	assert.Equal(t, room.ID, result.Room.ID)
	assert.Equal(t, models.RoomLobby, result.Room.State)
	assert.Len(t, result.Room.Players, 2)

	// No turn or penalties outside PLAYING.
	assert.Nil(t, result.Turn)
	assert.Nil(t, result.Penalties)
}

func TestRestoreWhilePlaying(t *testing.T) {
	reg := NewRegistry()
	admin := testPlayer("admin", models.SexMale)
	room, err := reg.CreateRoom("room", false, "", admin, models.ModeNormal, 5, true)
	require.NoError(t, err)
	b := testPlayer("b", models.SexFemale)
	require.NoError(t, reg.JoinRoom(room.ID, b))

	require.NoError(t, room.StartGame())
	template := &models.Challenge{
		ID:      uuid.New(),
		Text:    "{Player} drinks {sips}",
		Players: 1,
		Sips:    2,
		Type:    models.TypeYouDrink,
	}
	require.NoError(t, room.NextTurn(template, false))
	b.AddPenalty(&models.Penalty{Text: "whisper only", Rounds: 2})

	sr := NewSessionRestorer(reg)
	result, err := sr.Restore(room.ID, b.ID, "reconnected")
	require.NoError(t, err)

	assert.Equal(t, models.RoomPlaying, result.Room.State)
	require.NotNil(t, result.Turn)
	assert.Equal(t, admin.ID, result.Turn.Player.ID)
	assert.Equal(t, "admin drinks 2", result.Turn.Challenge.Text)

	require.Len(t, result.Penalties, 1)
	assert.Equal(t, "whisper only", result.Penalties[0].Text)
	assert.Equal(t, 2, result.Penalties[0].Rounds)
}

func TestRestoreUnknownRoomOrPlayer(t *testing.T) {
	reg := NewRegistry()
	admin := testPlayer("admin", models.SexMale)
	room, err := reg.CreateRoom("room", false, "", admin, models.ModeNormal, 5, true)
	require.NoError(t, err)

	sr := NewSessionRestorer(reg)

	_, err = sr.Restore(uuid.New(), admin.ID, "s")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = sr.Restore(room.ID, uuid.New(), "s")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
