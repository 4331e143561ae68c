package game

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// ResponseState tracks one affected player's answer within a turn.
type ResponseState int

const (
	ResponsePending ResponseState = iota
	ResponseDrank
	ResponseCompleted
)

// PlayerTurn is one active turn: the acting player, the resolved challenge
// and the affected players' responses. A turn is created fresh each round and
// owned exclusively by its room; the response map tolerates many concurrent
// writers, but its key set is fixed at creation.
type PlayerTurn struct {
	player    *Player
	challenge *models.Challenge
	affected  []*Player

	mu        sync.RWMutex
	responses map[uuid.UUID]ResponseState

	settled atomic.Bool
}

// NewPlayerTurn builds a turn whose response keys equal the affected id set
// exactly. challenge may be nil for the seed turn created by StartGame.
func NewPlayerTurn(player *Player, challenge *models.Challenge, affected []*Player) *PlayerTurn {
	t := &PlayerTurn{
		player:    player,
		challenge: challenge,
		affected:  affected,
		responses: make(map[uuid.UUID]ResponseState, len(affected)),
	}
	for _, p := range affected {
		if p != nil {
			t.responses[p.ID] = ResponsePending
		}
	}
	return t
}

func (t *PlayerTurn) Player() *Player {
	return t.player
}

func (t *PlayerTurn) Challenge() *models.Challenge {
	return t.challenge
}

// AffectedPlayers returns the slots filled at resolution time.
func (t *PlayerTurn) AffectedPlayers() []*Player {
	return t.affected
}

// RegisterResponse overwrites the player's state with DRANK or COMPLETED.
// Responses for players outside the affected set are ignored: stale or late
// socket messages are not an error.
func (t *PlayerTurn) RegisterResponse(playerID uuid.UUID, drank bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.responses[playerID]; !ok {
		return
	}
	if drank {
		t.responses[playerID] = ResponseDrank
	} else {
		t.responses[playerID] = ResponseCompleted
	}
}

// AllResponded reports whether no response is still pending. Monotonic:
// registered states can only be overwritten with DRANK or COMPLETED, never
// back to PENDING.
func (t *PlayerTurn) AllResponded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.responses) == 0 {
		return false
	}
	for _, state := range t.responses {
		if state == ResponsePending {
			return false
		}
	}
	return true
}

// PlayersDrunk returns the affected players who chose to drink.
func (t *PlayerTurn) PlayersDrunk() []*Player {
	return t.playersIn(ResponseDrank)
}

// PlayersCompleted returns the affected players who completed the dare.
func (t *PlayerTurn) PlayersCompleted() []*Player {
	return t.playersIn(ResponseCompleted)
}

func (t *PlayerTurn) playersIn(state ResponseState) []*Player {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*Player
	for _, p := range t.affected {
		if t.responses[p.ID] == state {
			out = append(out, p)
		}
	}
	return out
}

// TrySettle flips the one-shot settlement latch. Exactly one of the
// all-responded path, the timeout path and the force-skip path wins; the
// others observe false and do nothing.
func (t *PlayerTurn) TrySettle() bool {
	return t.settled.CompareAndSwap(false, true)
}
