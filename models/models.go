// models/models.go
package models

import (
	"github.com/google/uuid"
)

// Sex 表示挑战槽位的性别约束，ALL 为通配
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexAll    Sex = "ALL"
)

// Matches reports whether a player of sex s satisfies a slot constraint.
func (s Sex) Matches(constraint Sex) bool {
	return constraint == SexAll || s == constraint
}

// Difficulty 挑战难度档位
type Difficulty string

const (
	DifficultyEasy    Difficulty = "EASY"
	DifficultyMedium  Difficulty = "MEDIUM"
	DifficultyHard    Difficulty = "HARD"
	DifficultyExtreme Difficulty = "EXTREME"
)

// Difficulties returns the four tiers in their fixed enumeration order.
// Weighted draws depend on this order being stable.
func Difficulties() [4]Difficulty {
	return [4]Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme}
}

// ChallengeType 挑战结算类型
type ChallengeType string

const (
	// YouDrink: only the acting player answers.
	TypeYouDrink ChallengeType = "YOU_DRINK"
	// BothDrink: both slot players answer.
	TypeBothDrink ChallengeType = "BOTH_DRINK"
	// EveryoneDrink: the whole affected set answers.
	TypeEveryoneDrink ChallengeType = "EVERYONE_DRINK"
	// ChosenDrink: vote flow, currently a typed no-op variant. Turns of
	// this type progress via timeout or admin force-skip only.
	TypeChosenDrink ChallengeType = "CHOSEN_DRINK"
)

// RoomState 房间生命周期状态
type RoomState string

const (
	RoomLobby    RoomState = "LOBBY"
	RoomPlaying  RoomState = "PLAYING"
	RoomFinished RoomState = "FINISHED"
)

// CanTransitionTo encodes the only legal lifecycle edges:
// LOBBY -> PLAYING -> FINISHED.
func (s RoomState) CanTransitionTo(next RoomState) bool {
	switch s {
	case RoomLobby:
		return next == RoomPlaying
	case RoomPlaying:
		return next == RoomFinished
	default:
		return false
	}
}

// RoomMode 游戏模式标签
type RoomMode string

const (
	ModeNormal RoomMode = "NORMAL"
	ModeRandom RoomMode = "RANDOM"
)

// Penalty is a multi-round obligation attached to a player. Rounds decay by
// one per game round and the penalty is dropped at zero.
type Penalty struct {
	Text   string `json:"text"`
	Rounds int    `json:"rounds"`
}

// Clone returns an independent copy so that per-player decay never shares
// a counter between players.
func (p *Penalty) Clone() *Penalty {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Challenge is a templated prompt. Text may embed the {Player}, {Player2}
// and {sips} placeholders; resolution produces a fresh value with the same ID.
type Challenge struct {
	ID         uuid.UUID     `json:"id"`
	Text       string        `json:"text"`
	Difficulty Difficulty    `json:"difficulty"`
	Sexes      []Sex         `json:"sexes"`
	Players    int           `json:"players"`
	Sips       int           `json:"sips"`
	Type       ChallengeType `json:"type"`
	Penalty    *Penalty      `json:"penalty,omitempty"`
}

// SlotSex returns the sex constraint for slot i, defaulting to ALL when the
// catalog row carries fewer constraints than slots.
func (c *Challenge) SlotSex(i int) Sex {
	if i < len(c.Sexes) {
		return c.Sexes[i]
	}
	return SexAll
}

// DifficultyValues is a player's taste profile over the four tiers. The four
// weights are non-negative and sum to 1.0. A fixed-field struct rather than a
// keyed map so the compiler keeps the tier set exhaustive.
type DifficultyValues struct {
	Easy    float64 `json:"easy"`
	Medium  float64 `json:"medium"`
	Hard    float64 `json:"hard"`
	Extreme float64 `json:"extreme"`
}

// DefaultDifficultyValues mirrors the upstream defaults.
func DefaultDifficultyValues() DifficultyValues {
	return DifficultyValues{Easy: 0.3, Medium: 0.35, Hard: 0.35, Extreme: 0}
}

func (v DifficultyValues) Weight(d Difficulty) float64 {
	switch d {
	case DifficultyEasy:
		return v.Easy
	case DifficultyMedium:
		return v.Medium
	case DifficultyHard:
		return v.Hard
	case DifficultyExtreme:
		return v.Extreme
	}
	return 0
}

func (v DifficultyValues) Sum() float64 {
	return v.Easy + v.Medium + v.Hard + v.Extreme
}

// ChallengeStats holds the per-tier corpus counts used to bias the
// difficulty draw towards tiers the catalog can actually serve.
type ChallengeStats struct {
	Easy    int `json:"easy"`
	Medium  int `json:"medium"`
	Hard    int `json:"hard"`
	Extreme int `json:"extreme"`
	Total   int `json:"total"`
}

func (s ChallengeStats) Count(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return s.Easy
	case DifficultyMedium:
		return s.Medium
	case DifficultyHard:
		return s.Hard
	case DifficultyExtreme:
		return s.Extreme
	}
	return 0
}
