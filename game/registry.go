package game

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// Registry is the process-wide room table. The table itself is safe for
// concurrent create/get/remove; mutations inside one room are serialized by
// that room's lock, which the registry acquires for roster operations.
// Rooms are ephemeral: nothing survives a restart.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*GameRoom
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[uuid.UUID]*GameRoom),
	}
}

// CreateRoom validates the parameters, allocates a room id and stores the
// room with the admin as its first player.
func (reg *Registry) CreateRoom(name string, private bool, password string, admin *Player, mode models.RoomMode, rememberCount int, showChallenges bool) (*GameRoom, error) {
	if name == "" {
		return nil, validationErr("room name cannot be empty")
	}
	if private && password == "" {
		return nil, validationErr("private rooms require a password")
	}
	if admin == nil {
		return nil, validationErr("admin cannot be nil")
	}
	if rememberCount <= 0 {
		return nil, validationErr("remembered challenges must be greater than 0")
	}

	admin.IsAdmin = true
	room := NewGameRoom(name, private, password, admin, mode, rememberCount, showChallenges)

	reg.mu.Lock()
	reg.rooms[room.ID] = room
	reg.mu.Unlock()
	return room, nil
}

// Room returns the room with the given id.
func (reg *Registry) Room(id uuid.UUID) (*GameRoom, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Rooms returns a snapshot of every live room.
func (reg *Registry) Rooms() []*GameRoom {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*GameRoom, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room)
	}
	return out
}

// RoomCount returns the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func (reg *Registry) removeRoom(id uuid.UUID) {
	reg.mu.Lock()
	delete(reg.rooms, id)
	reg.mu.Unlock()
}

// JoinRoom appends a player to a lobby. Joining a room that has already
// started is silently ignored, matching the append-only lobby rule.
func (reg *Registry) JoinRoom(roomID uuid.UUID, player *Player) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}
	if player == nil {
		return validationErr("player cannot be nil")
	}

	room.Lock()
	defer room.Unlock()
	if admin := room.Admin(); player == admin || player.ID == admin.ID {
		return validationErr("player cannot be the room admin")
	}
	room.AddPlayer(player)
	return nil
}

// LeaveRoom removes a player after checking their session token. A leaving
// admin promotes the next player in join order; the last player leaving
// destroys the room.
func (reg *Registry) LeaveRoom(roomID, playerID uuid.UUID, sessionToken string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	player := room.Player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.MatchesSession(sessionToken) {
		return ErrUnauthorized
	}

	if room.Admin().ID == player.ID {
		promoted := false
		for _, next := range room.Players() {
			if next.ID != player.ID {
				room.SetAdmin(next)
				promoted = true
				break
			}
		}
		if !promoted {
			reg.removeRoom(roomID)
			return nil
		}
	}

	room.RemovePlayer(playerID)
	if room.PlayerCount() == 0 {
		reg.removeRoom(roomID)
	}
	return nil
}

// KickPlayer removes a player on the admin's authority.
func (reg *Registry) KickPlayer(roomID, playerID uuid.UUID, adminToken string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}
	if room.Player(playerID) == nil {
		return ErrPlayerNotFound
	}
	room.RemovePlayer(playerID)
	return nil
}

// SetPlayerReady toggles the ready flag, token-checked against the player.
func (reg *Registry) SetPlayerReady(roomID, playerID uuid.UUID, sessionToken string, ready bool) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	player := room.Player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.MatchesSession(sessionToken) {
		return ErrUnauthorized
	}
	player.IsReady = ready
	return nil
}

// PlayerDifficulty returns a player's taste profile, admin only.
func (reg *Registry) PlayerDifficulty(roomID, playerID uuid.UUID, adminToken string) (models.DifficultyValues, error) {
	room, err := reg.Room(roomID)
	if err != nil {
		return models.DifficultyValues{}, err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return models.DifficultyValues{}, ErrUnauthorized
	}
	player := room.Player(playerID)
	if player == nil {
		return models.DifficultyValues{}, ErrPlayerNotFound
	}
	return player.Difficulty, nil
}

// ChangePlayerDifficulty replaces a player's taste profile, admin only. The
// four weights must be non-negative and sum to 1.0.
func (reg *Registry) ChangePlayerDifficulty(roomID, playerID uuid.UUID, values models.DifficultyValues, adminToken string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}
	player := room.Player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if values.Easy < 0 || values.Medium < 0 || values.Hard < 0 || values.Extreme < 0 {
		return validationErr("difficulty weights must be non-negative")
	}
	if math.Abs(values.Sum()-1.0) > 1e-9 {
		return validationErr("difficulty weights must sum to 1.0")
	}
	player.Difficulty = values
	return nil
}

// ChangeChallengeMode flips the show-challenges flag, admin only.
func (reg *Registry) ChangeChallengeMode(roomID uuid.UUID, show bool, adminToken string) error {
	room, err := reg.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}
	room.ShowChallenges = show
	return nil
}
