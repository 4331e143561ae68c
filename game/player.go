package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// Player belongs to exactly one room. Roster membership and turn bookkeeping
// are serialized by the owning room; the player's own mutex only guards the
// fields that reconnects and settlements touch directly (session handle,
// penalties, drink counter).
type Player struct {
	ID         uuid.UUID
	Name       string
	Sex        models.Sex
	Difficulty models.DifficultyValues
	IsAdmin    bool
	IsReady    bool
	IsPlaying  bool

	mu        sync.Mutex
	sessionID string
	penalties []*models.Penalty
	drinks    int
}

func NewPlayer(name string, sex models.Sex, values models.DifficultyValues, admin bool, sessionID string) *Player {
	return &Player{
		ID:         uuid.New(),
		Name:       name,
		Sex:        sex,
		Difficulty: values,
		IsAdmin:    admin,
		sessionID:  sessionID,
	}
}

// SessionID returns the live session handle.
func (p *Player) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// BindSession rebinds the session handle, e.g. after a reconnect.
func (p *Player) BindSession(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionID = sessionID
}

// MatchesSession compares a caller-supplied token against the stored handle.
// Empty handles never match.
func (p *Player) MatchesSession(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return token != "" && p.sessionID == token
}

// AddSips adds to the cumulative drink counter.
func (p *Player) AddSips(sips int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drinks += sips
}

func (p *Player) Drinks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drinks
}

// AddPenalty attaches a penalty with its round counter as created. No
// pre-increment: decay runs exactly once per round at dispatch.
func (p *Player) AddPenalty(penalty *models.Penalty) {
	if penalty == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.penalties = append(p.penalties, penalty)
}

// DecayPenalties decrements every active penalty by one round and drops
// those that reach zero.
func (p *Player) DecayPenalties() {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.penalties[:0]
	for _, pen := range p.penalties {
		pen.Rounds--
		if pen.Rounds > 0 {
			kept = append(kept, pen)
		}
	}
	p.penalties = kept
}

// Penalties returns a snapshot copy of the active penalties.
func (p *Player) Penalties() []models.Penalty {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Penalty, 0, len(p.penalties))
	for _, pen := range p.penalties {
		out = append(out, *pen)
	}
	return out
}
