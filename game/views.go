package game

import (
	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// Views are the engine-owned snapshots handed to the broadcaster and to
// reconnecting clients. They carry no live pointers into room state.

type PlayerView struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Sex     models.Sex `json:"sex"`
	Drinks  int        `json:"drinks"`
	IsAdmin bool       `json:"isAdmin"`
	IsReady bool       `json:"isReady"`
}

type PenaltyView struct {
	Text   string `json:"text"`
	Rounds int    `json:"rounds"`
}

type ChallengeView struct {
	ID          uuid.UUID            `json:"id"`
	Text        string               `json:"text"`
	Difficulty  models.Difficulty    `json:"difficulty"`
	Sips        int                  `json:"sips"`
	Type        models.ChallengeType `json:"type"`
	PenaltyText string               `json:"penaltyText,omitempty"`
}

type TurnView struct {
	Player          PlayerView    `json:"player"`
	Challenge       ChallengeView `json:"challenge"`
	AffectedPlayers []PlayerView  `json:"affectedPlayers"`
}

type RoomSummary struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Private        bool             `json:"private"`
	State          models.RoomState `json:"state"`
	Mode           models.RoomMode  `json:"mode"`
	Round          int              `json:"round"`
	ShowChallenges bool             `json:"showChallenges"`
	Players        []PlayerView     `json:"players"`
}

// RestoreResult is a reconnecting client's rebuilt view. Turn and Penalties
// are set only while the room is PLAYING.
type RestoreResult struct {
	Self      PlayerView    `json:"self"`
	Room      RoomSummary   `json:"room"`
	Turn      *TurnView     `json:"turn,omitempty"`
	Penalties []PenaltyView `json:"penalties,omitempty"`
}

// ChallengeNotice is the per-player payload sent when a turn is dispatched.
type ChallengeNotice struct {
	Turn      TurnView      `json:"turn"`
	Penalties []PenaltyView `json:"penalties"`
}

func newPlayerView(p *Player) PlayerView {
	return PlayerView{
		ID:      p.ID,
		Name:    p.Name,
		Sex:     p.Sex,
		Drinks:  p.Drinks(),
		IsAdmin: p.IsAdmin,
		IsReady: p.IsReady,
	}
}

func newPenaltyViews(p *Player) []PenaltyView {
	penalties := p.Penalties()
	out := make([]PenaltyView, 0, len(penalties))
	for _, pen := range penalties {
		out = append(out, PenaltyView{Text: pen.Text, Rounds: pen.Rounds})
	}
	return out
}

func newChallengeView(c *models.Challenge) ChallengeView {
	view := ChallengeView{
		ID:         c.ID,
		Text:       c.Text,
		Difficulty: c.Difficulty,
		Sips:       c.Sips,
		Type:       c.Type,
	}
	if c.Penalty != nil {
		view.PenaltyText = c.Penalty.Text
	}
	return view
}

// newTurnView snapshots the current turn. Caller holds the room lock.
func newTurnView(turn *PlayerTurn) *TurnView {
	if turn == nil || turn.Challenge() == nil {
		return nil
	}
	affected := turn.AffectedPlayers()
	views := make([]PlayerView, 0, len(affected))
	for _, p := range affected {
		views = append(views, newPlayerView(p))
	}
	return &TurnView{
		Player:          newPlayerView(turn.Player()),
		Challenge:       newChallengeView(turn.Challenge()),
		AffectedPlayers: views,
	}
}

// NewRoomSummary snapshots the room. Caller holds the room lock.
func NewRoomSummary(room *GameRoom) RoomSummary {
	players := room.Players()
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, newPlayerView(p))
	}
	return RoomSummary{
		ID:             room.ID,
		Name:           room.Name,
		Private:        room.Private,
		State:          room.State(),
		Mode:           room.Mode,
		Round:          room.Round(),
		ShowChallenges: room.ShowChallenges,
		Players:        views,
	}
}
