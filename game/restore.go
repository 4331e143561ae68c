package game

import (
	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// SessionRestorer rebuilds a reconnecting client's view from live room and
// turn state, rebinding the player's session handle in the process.
type SessionRestorer struct {
	registry *Registry
}

func NewSessionRestorer(registry *Registry) *SessionRestorer {
	return &SessionRestorer{registry: registry}
}

// Restore rebinds the player to newSessionToken and returns their own view
// plus a room summary. The active turn view and the player's penalties are
// included only while the room is PLAYING.
func (sr *SessionRestorer) Restore(roomID, playerID uuid.UUID, newSessionToken string) (*RestoreResult, error) {
	room, err := sr.registry.Room(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	player := room.Player(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	player.BindSession(newSessionToken)

	result := &RestoreResult{
		Self: newPlayerView(player),
		Room: NewRoomSummary(room),
	}
	if room.State() == models.RoomPlaying {
		result.Turn = newTurnView(room.CurrentTurn())
		result.Penalties = newPenaltyViews(player)
	}
	return result, nil
}
