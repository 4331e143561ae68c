package game

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/challenge"
	"github.com/JosMartins/Drinkster/logger"
	"github.com/JosMartins/Drinkster/models"
)

// Broadcaster delivers engine output to a player's live session. Defined
// here, consumer-side, so the transport packages can depend on game and not
// the other way around.
type Broadcaster interface {
	DeliverChallenge(sessionID string, notice *ChallengeNotice) error
}

// Scheduler arms at most one forced-progress timer per room. Arming always
// supersedes a pending timer for the same room.
type Scheduler interface {
	Arm(roomID uuid.UUID, delay time.Duration, fn func())
	Cancel(roomID uuid.UUID)
}

// Metrics receives engine-level counters. Optional; wired by the server.
type Metrics interface {
	IncTurnsDispatched()
	IncChallengeTimeouts()
	IncChallengeRedraws()
}

const (
	defaultTurnTimeout    = 5 * time.Minute
	defaultRedrawsPerTier = 4
)

// Engine serializes all game-affecting operations per room and drives the
// turn cycle: penalty decay, difficulty pick, non-repeat draw with a capped
// redraw loop, turn replacement, broadcast and timer re-arm. The timeout
// callback runs through the same room lock as manual responses, so forced
// progression can never double-apply completion effects.
type Engine struct {
	registry    *Registry
	selector    *challenge.Selector
	broadcaster Broadcaster
	scheduler   Scheduler

	turnTimeout    time.Duration
	redrawsPerTier int
	metrics        Metrics
}

// SetMetrics attaches the monitoring hooks. Safe to leave unset.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

func NewEngine(registry *Registry, selector *challenge.Selector, broadcaster Broadcaster, scheduler Scheduler, turnTimeout time.Duration, redrawsPerTier int) *Engine {
	if turnTimeout <= 0 {
		turnTimeout = defaultTurnTimeout
	}
	if redrawsPerTier <= 0 {
		redrawsPerTier = defaultRedrawsPerTier
	}
	return &Engine{
		registry:       registry,
		selector:       selector,
		broadcaster:    broadcaster,
		scheduler:      scheduler,
		turnTimeout:    turnTimeout,
		redrawsPerTier: redrawsPerTier,
	}
}

// StartGame transitions the room to PLAYING on the admin's authority and
// dispatches the first challenge to the player at index 0.
func (e *Engine) StartGame(roomID uuid.UUID, adminToken string) error {
	room, err := e.registry.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}
	if err := room.StartGame(); err != nil {
		return err
	}
	// The seed turn acts for index 0, so the first dispatch must not
	// advance the pointer.
	return e.dispatchLocked(room, false)
}

// HandleResponse records one affected player's answer on the current turn.
// Once every affected player has responded, the turn settles and the next
// challenge is dispatched.
func (e *Engine) HandleResponse(roomID, playerID uuid.UUID, sessionToken string, drank bool) error {
	room, err := e.registry.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if room.State() != models.RoomPlaying {
		return ErrInvalidState
	}
	player := room.Player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.MatchesSession(sessionToken) {
		return ErrUnauthorized
	}
	turn := room.CurrentTurn()
	if turn == nil || turn.Challenge() == nil {
		return ErrInvalidState
	}

	switch turn.Challenge().Type {
	case models.TypeYouDrink, models.TypeBothDrink, models.TypeEveryoneDrink:
		turn.RegisterResponse(playerID, drank)
	case models.TypeChosenDrink:
		// Vote flow not implemented; these turns progress via timeout
		// or admin force-skip.
	}

	if turn.AllResponded() && turn.TrySettle() {
		room.SettleTurn()
		e.scheduler.Cancel(room.ID)
		return e.dispatchLocked(room, true)
	}
	return nil
}

// CompleteChallenge is the acting player's own resolution of the current
// turn: sips when they drank, the challenge's penalty to the whole affected
// set when they completed the dare instead. It settles the turn and
// dispatches the next one; when another path already consumed the settled
// latch the call is a no-op.
func (e *Engine) CompleteChallenge(roomID, playerID uuid.UUID, sessionToken string, drunk bool) error {
	room, err := e.registry.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if room.State() != models.RoomPlaying {
		return ErrInvalidState
	}
	player := room.Player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.MatchesSession(sessionToken) {
		return ErrUnauthorized
	}
	if current := room.CurrentPlayer(); current == nil || current.ID != playerID {
		return validationErr("player is not the current player")
	}
	turn := room.CurrentTurn()
	if turn == nil || turn.Challenge() == nil {
		return ErrInvalidState
	}
	if !turn.TrySettle() {
		return nil
	}

	room.HandleChallengeCompletion(drunk)
	e.scheduler.Cancel(room.ID)
	return e.dispatchLocked(room, true)
}

// ForceSkip settles the current turn with whatever responses exist and
// advances, on the admin's authority.
func (e *Engine) ForceSkip(roomID uuid.UUID, adminToken string) error {
	room, err := e.registry.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if room.State() != models.RoomPlaying {
		return ErrInvalidState
	}
	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}

	turn := room.CurrentTurn()
	if turn != nil && turn.Challenge() != nil {
		if !turn.TrySettle() {
			return nil
		}
		room.SettleTurn()
	}
	e.scheduler.Cancel(room.ID)
	return e.dispatchLocked(room, true)
}

// EndGame transitions the room to FINISHED and cancels its timer.
func (e *Engine) EndGame(roomID uuid.UUID, adminToken string) error {
	room, err := e.registry.Room(roomID)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	if !room.Admin().MatchesSession(adminToken) {
		return ErrUnauthorized
	}
	if err := room.EndGame(); err != nil {
		return err
	}
	e.scheduler.Cancel(room.ID)
	return nil
}

// handleTimeout is the armed callback: forced progression is the same
// settlement as an all-responded completion, not an error path. It takes the
// room lock, so a timeout racing a late manual response settles exactly once.
func (e *Engine) handleTimeout(roomID uuid.UUID) {
	room, err := e.registry.Room(roomID)
	if err != nil {
		// Room destroyed while the timer was in flight.
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.State() != models.RoomPlaying {
		return
	}
	turn := room.CurrentTurn()
	if turn == nil || turn.Challenge() == nil || !turn.TrySettle() {
		return
	}

	logger.Log.Infow("challenge timed out, forcing progression",
		"room", roomID, "round", room.Round())
	if e.metrics != nil {
		e.metrics.IncChallengeTimeouts()
	}

	room.SettleTurn()
	if err := e.dispatchLocked(room, true); err != nil {
		logger.Log.Errorw("failed to dispatch after timeout", "room", roomID, "error", err)
	}
}

// dispatchLocked runs one full turn dispatch. Caller holds the room lock.
//
// Penalties decay exactly here, once per round. The difficulty is picked for
// the upcoming player's taste profile before the pointer advances. Redraws
// within a tier are capped; exhausted tiers fall through to the next tier in
// enumeration order, wrapping across all four, before giving up.
func (e *Engine) dispatchLocked(room *GameRoom, advance bool) error {
	room.DecayPenalties()

	target := room.CurrentPlayer()
	if advance {
		target = room.PeekNextPlayer()
	}
	if target == nil {
		return ErrPlayerNotFound
	}

	picked := e.selector.PickDifficulty(target.Difficulty)
	tiers := models.Difficulties()
	start := 0
	for i, d := range tiers {
		if d == picked {
			start = i
			break
		}
	}

	exclude := room.History().IDs()
	for offset := 0; offset < len(tiers); offset++ {
		tier := tiers[(start+offset)%len(tiers)]
		for attempt := 0; attempt < e.redrawsPerTier; attempt++ {
			template, err := e.selector.Draw(exclude, tier)
			if err != nil {
				if errors.Is(err, challenge.ErrNoChallenge) {
					break // tier exhausted, try the next one
				}
				return err
			}

			err = room.NextTurn(template, advance)
			if err == nil {
				logger.Log.Infow("turn dispatched",
					"room", room.ID, "round", room.Round(),
					"player", room.CurrentPlayer().Name, "difficulty", tier)
				if e.metrics != nil {
					e.metrics.IncTurnsDispatched()
				}
				e.broadcastTurnLocked(room)
				e.scheduler.Arm(room.ID, e.turnTimeout, func() { e.handleTimeout(room.ID) })
				return nil
			}
			if errors.Is(err, errIncompatibleChallenge) {
				// Do not redraw the same template within this dispatch.
				exclude = append(exclude, template.ID)
				if e.metrics != nil {
					e.metrics.IncChallengeRedraws()
				}
				continue
			}
			return err
		}
	}
	return ErrNoEligibleChallenge
}

// broadcastTurnLocked sends each player their view of the new turn together
// with their own penalties. When the room hides challenges, players outside
// the affected set receive the turn without the challenge text.
func (e *Engine) broadcastTurnLocked(room *GameRoom) {
	turn := room.CurrentTurn()
	view := newTurnView(turn)
	if view == nil {
		return
	}

	affected := make(map[uuid.UUID]bool, len(turn.AffectedPlayers()))
	for _, p := range turn.AffectedPlayers() {
		affected[p.ID] = true
	}

	for _, player := range room.Players() {
		sessionID := player.SessionID()
		if sessionID == "" {
			continue
		}

		notice := &ChallengeNotice{Turn: *view, Penalties: newPenaltyViews(player)}
		if !room.ShowChallenges && !affected[player.ID] {
			notice.Turn.Challenge.Text = ""
			notice.Turn.Challenge.PenaltyText = ""
		}
		if err := e.broadcaster.DeliverChallenge(sessionID, notice); err != nil {
			logger.Log.Debugw("failed to deliver challenge",
				"room", room.ID, "player", player.ID, "error", err)
		}
	}
}
