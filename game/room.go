package game

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/challenge"
	"github.com/JosMartins/Drinkster/models"
)

// GameRoom is one game session: an admin, an ordered roster, a lifecycle
// state and the current turn. Game-affecting mutations (index rotation, turn
// replacement, roster edits while playing) are not self-serialized; callers
// go through the room's mutex, which the registry and engine own as the
// single per-room serialization point.
type GameRoom struct {
	ID                   uuid.UUID
	Name                 string
	Private              bool
	Password             string
	Mode                 models.RoomMode
	RememberedChallenges int
	ShowChallenges       bool
	CreatedAt            time.Time

	// mu is the per-room single-writer lock. Registry and engine acquire
	// it around every roster or game mutation.
	mu sync.Mutex

	admin        *Player
	players      []*Player
	state        models.RoomState
	currentIndex int
	currentTurn  *PlayerTurn
	round        int
	history      *challenge.History
}

// NewGameRoom creates a room in LOBBY with the admin as its first player.
func NewGameRoom(name string, private bool, password string, admin *Player, mode models.RoomMode, rememberCount int, showChallenges bool) *GameRoom {
	if !private {
		password = ""
	}
	return &GameRoom{
		ID:                   uuid.New(),
		Name:                 name,
		Private:              private,
		Password:             password,
		Mode:                 mode,
		RememberedChallenges: rememberCount,
		ShowChallenges:       showChallenges,
		CreatedAt:            time.Now(),
		admin:                admin,
		players:              []*Player{admin},
		state:                models.RoomLobby,
		history:              challenge.NewHistory(rememberCount),
	}
}

// Lock acquires the room's serialization point. Every game-affecting
// operation, including the timeout callback, goes through it.
func (r *GameRoom) Lock() { r.mu.Lock() }

// Unlock releases the room's serialization point.
func (r *GameRoom) Unlock() { r.mu.Unlock() }

// State returns the lifecycle state. Caller holds the room lock.
func (r *GameRoom) State() models.RoomState {
	return r.state
}

func (r *GameRoom) Admin() *Player {
	return r.admin
}

func (r *GameRoom) SetAdmin(p *Player) {
	if r.admin != nil {
		r.admin.IsAdmin = false
	}
	r.admin = p
	p.IsAdmin = true
}

func (r *GameRoom) Round() int {
	return r.round
}

func (r *GameRoom) CurrentTurn() *PlayerTurn {
	return r.currentTurn
}

func (r *GameRoom) History() *challenge.History {
	return r.history
}

// Players returns the roster snapshot in join order.
func (r *GameRoom) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

func (r *GameRoom) PlayerCount() int {
	return len(r.players)
}

// Player finds a roster member by id, nil when absent.
func (r *GameRoom) Player(id uuid.UUID) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddPlayer appends a player while the room is in LOBBY. Outside LOBBY the
// call is a silent no-op: the lobby is append-only.
func (r *GameRoom) AddPlayer(p *Player) {
	if r.state != models.RoomLobby {
		return
	}
	r.players = append(r.players, p)
}

// RemovePlayer drops a player and keeps the current index pointing at a
// valid roster slot.
func (r *GameRoom) RemovePlayer(id uuid.UUID) {
	for i, p := range r.players {
		if p.ID != id {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		if i < r.currentIndex {
			r.currentIndex--
		}
		if len(r.players) > 0 && r.currentIndex >= len(r.players) {
			r.currentIndex = 0
		}
		return
	}
}

// CurrentPlayer returns the acting player, nil on an empty roster.
func (r *GameRoom) CurrentPlayer() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[r.currentIndex]
}

// PeekNextPlayer looks ahead to the next roster slot without advancing, so a
// challenge can be drawn for the upcoming player's taste profile.
func (r *GameRoom) PeekNextPlayer() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[(r.currentIndex+1)%len(r.players)]
}

func (r *GameRoom) advancePlayer() {
	if len(r.players) > 0 {
		r.currentIndex = (r.currentIndex + 1) % len(r.players)
	}
}

// RandomOtherPlayer draws uniformly from the roster minus exclude.
func (r *GameRoom) RandomOtherPlayer(exclude *Player) *Player {
	candidates := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p != exclude {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rand.Intn(len(candidates))]
}

// StartGame moves LOBBY -> PLAYING with at least two players and seeds the
// first turn for the player at index 0, with no challenge resolved yet.
func (r *GameRoom) StartGame() error {
	if r.state != models.RoomLobby || len(r.players) < 2 {
		return ErrInvalidState
	}
	r.state = models.RoomPlaying
	for _, p := range r.players {
		p.IsPlaying = true
	}
	r.currentTurn = NewPlayerTurn(r.CurrentPlayer(), nil, nil)
	return nil
}

// EndGame moves PLAYING -> FINISHED.
func (r *GameRoom) EndGame() error {
	if !r.state.CanTransitionTo(models.RoomFinished) {
		return ErrInvalidState
	}
	r.state = models.RoomFinished
	for _, p := range r.players {
		p.IsPlaying = false
	}
	return nil
}

// NextTurn resolves the next turn from a catalog template. With advance set,
// the acting pointer rotates before resolution. An incompatible challenge
// leaves index, turn, round and history untouched so the caller can redraw
// and retry without re-advancing.
func (r *GameRoom) NextTurn(template *models.Challenge, advance bool) error {
	prevIndex := r.currentIndex
	if advance {
		r.advancePlayer()
	}

	turn, err := r.processChallenge(template)
	if err != nil {
		r.currentIndex = prevIndex
		return err
	}

	r.currentTurn = turn
	r.round++
	r.history.Push(turn.challenge.ID)
	return nil
}

// processChallenge resolves a template against the acting player: slot sex
// constraints are checked before any substitution, then {Player}, {Player2}
// and {sips} are filled in the text and penalty text. The result is a fresh
// Challenge value carrying the source id for anti-repeat tracking.
func (r *GameRoom) processChallenge(template *models.Challenge) (*PlayerTurn, error) {
	acting := r.CurrentPlayer()
	if acting == nil {
		return nil, ErrPlayerNotFound
	}

	text := template.Text
	var affected []*Player
	var penalty *models.Penalty

	switch template.Players {
	case 1:
		if !acting.Sex.Matches(template.SlotSex(0)) {
			return nil, errIncompatibleChallenge
		}
		affected = []*Player{acting}
		text = strings.ReplaceAll(text, "{Player}", acting.Name)
		penalty = resolvePenalty(template.Penalty, acting.Name, "")

	case 2:
		second := r.RandomOtherPlayer(acting)
		if second == nil {
			return nil, errIncompatibleChallenge
		}
		if !acting.Sex.Matches(template.SlotSex(0)) || !second.Sex.Matches(template.SlotSex(1)) {
			return nil, errIncompatibleChallenge
		}
		affected = []*Player{acting, second}
		text = strings.ReplaceAll(text, "{Player}", acting.Name)
		text = strings.ReplaceAll(text, "{Player2}", second.Name)
		penalty = resolvePenalty(template.Penalty, acting.Name, second.Name)

	default:
		return nil, errIncompatibleChallenge
	}

	text = strings.ReplaceAll(text, "{sips}", strconv.Itoa(template.Sips))

	resolved := &models.Challenge{
		ID:         template.ID,
		Text:       text,
		Difficulty: template.Difficulty,
		Players:    template.Players,
		Sips:       template.Sips,
		Type:       template.Type,
		Penalty:    penalty,
	}
	return NewPlayerTurn(acting, resolved, affected), nil
}

func resolvePenalty(template *models.Penalty, player, player2 string) *models.Penalty {
	if template == nil {
		return nil
	}
	p := template.Clone()
	p.Text = strings.ReplaceAll(p.Text, "{Player}", player)
	if player2 != "" {
		p.Text = strings.ReplaceAll(p.Text, "{Player2}", player2)
	}
	return p
}

// HandleChallengeCompletion applies the acting player's own answer: drinking
// adds the challenge's sips to their counter, completing the dare instead
// hands the challenge's penalty to every affected player. Penalty decay is
// not handled here; it runs once per round at next-challenge dispatch.
func (r *GameRoom) HandleChallengeCompletion(drunk bool) {
	turn := r.currentTurn
	if turn == nil || turn.challenge == nil {
		return
	}

	if drunk {
		turn.player.AddSips(turn.challenge.Sips)
		return
	}
	if turn.challenge.Penalty != nil {
		for _, p := range turn.affected {
			p.AddPenalty(turn.challenge.Penalty.Clone())
		}
	}
}

// SettleTurn applies the recorded responses of the whole affected set: DRANK
// players get the challenge's sips, COMPLETED players get its penalty.
func (r *GameRoom) SettleTurn() {
	turn := r.currentTurn
	if turn == nil || turn.challenge == nil {
		return
	}

	for _, p := range turn.PlayersDrunk() {
		p.AddSips(turn.challenge.Sips)
	}
	if turn.challenge.Penalty != nil {
		for _, p := range turn.PlayersCompleted() {
			p.AddPenalty(turn.challenge.Penalty.Clone())
		}
	}
}

// DecayPenalties ages every player's penalties by one round. Runs exactly
// once per round, at the moment the next challenge is dispatched.
func (r *GameRoom) DecayPenalties() {
	for _, p := range r.players {
		p.DecayPenalties()
	}
}
