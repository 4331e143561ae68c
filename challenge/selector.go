package challenge

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// ErrNoChallenge is returned by a Catalog when no challenge matches the
// requested tier and exclusion list.
var ErrNoChallenge = errors.New("no eligible challenge")

// Catalog is the read-only oracle the selector draws from. Implemented by
// the persistence layer in production and stubbed in tests.
type Catalog interface {
	// RandomChallenge returns a random challenge of the given difficulty
	// whose id is not in exclude, or ErrNoChallenge when the tier is
	// exhausted.
	RandomChallenge(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error)
	// Stats returns the per-tier corpus counts.
	Stats() models.ChallengeStats
}

// Selector picks a difficulty tier via a weighted draw and then a
// non-repeating challenge of that tier.
type Selector struct {
	catalog Catalog
	randf   func() float64 // swappable for deterministic tests
}

func NewSelector(catalog Catalog) *Selector {
	return &Selector{
		catalog: catalog,
		randf:   rand.Float64,
	}
}

// PickDifficulty combines the player's taste profile with the catalog's
// per-tier counts. Tiers the catalog cannot serve get zero weight, so they
// are never drawn. A fully zero distribution falls back to HARD rather than
// failing.
func (s *Selector) PickDifficulty(values models.DifficultyValues) models.Difficulty {
	stats := s.catalog.Stats()

	var weights [4]float64
	total := 0.0
	for i, d := range models.Difficulties() {
		weights[i] = values.Weight(d) * float64(stats.Count(d))
		total += weights[i]
	}

	if total == 0 {
		return models.DifficultyHard
	}

	r := s.randf()
	cumulative := 0.0
	for i, d := range models.Difficulties() {
		cumulative += weights[i] / total
		if r < cumulative {
			return d
		}
	}

	// Only reachable through float rounding at the top of the range.
	return models.DifficultyExtreme
}

// Draw returns a random challenge of the given tier not in exclude.
func (s *Selector) Draw(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error) {
	return s.catalog.RandomChallenge(exclude, difficulty)
}

// Stats exposes the catalog counts for callers that report them.
func (s *Selector) Stats() models.ChallengeStats {
	return s.catalog.Stats()
}
