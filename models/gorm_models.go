// models/gorm_models.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// GormChallenge 挑战目录表
// The penalty is flattened into the row; a missing penalty is NULL columns.
type GormChallenge struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Text          string         `gorm:"not null"`
	Difficulty    string         `gorm:"index;not null"`
	Sexes         pq.StringArray `gorm:"type:text[]"`
	Players       int            `gorm:"not null;default:1"`
	Sips          int            `gorm:"not null"`
	Type          string         `gorm:"not null"`
	PenaltyText   *string
	PenaltyRounds *int
	AI            bool `gorm:"default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (GormChallenge) TableName() string { return "challenges" }

// ToChallenge converts a catalog row into the domain value.
func (g *GormChallenge) ToChallenge() *Challenge {
	sexes := make([]Sex, 0, len(g.Sexes))
	for _, s := range g.Sexes {
		sexes = append(sexes, Sex(s))
	}

	var penalty *Penalty
	if g.PenaltyText != nil {
		rounds := 0
		if g.PenaltyRounds != nil {
			rounds = *g.PenaltyRounds
		}
		penalty = &Penalty{Text: *g.PenaltyText, Rounds: rounds}
	}

	return &Challenge{
		ID:         g.ID,
		Text:       g.Text,
		Difficulty: Difficulty(g.Difficulty),
		Sexes:      sexes,
		Players:    g.Players,
		Sips:       g.Sips,
		Type:       ChallengeType(g.Type),
		Penalty:    penalty,
	}
}

// FromChallenge builds a catalog row from the domain value. A zero ID gets a
// fresh uuid so callers can hand in new challenges directly.
func FromChallenge(c *Challenge) *GormChallenge {
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	sexes := make(pq.StringArray, 0, len(c.Sexes))
	for _, s := range c.Sexes {
		sexes = append(sexes, string(s))
	}

	row := &GormChallenge{
		ID:         id,
		Text:       c.Text,
		Difficulty: string(c.Difficulty),
		Sexes:      sexes,
		Players:    c.Players,
		Sips:       c.Sips,
		Type:       string(c.Type),
	}
	if c.Penalty != nil {
		text := c.Penalty.Text
		rounds := c.Penalty.Rounds
		row.PenaltyText = &text
		row.PenaltyRounds = &rounds
	}
	return row
}
