// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/models"
)

// ChallengeStore is the persistent challenge catalog. The game core only
// reads from it; the CRUD surface serves catalog administration.
type ChallengeStore interface {
	// RandomChallenge returns a uniformly random challenge of the given
	// difficulty whose id is not in exclude.
	RandomChallenge(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error)
	CountByDifficulty(difficulty models.Difficulty) (int, error)
	CountAll() (int, error)

	FindByID(id uuid.UUID) (*models.Challenge, error)
	FindAll() ([]*models.Challenge, error)
	FindByDifficulty(difficulty models.Difficulty) ([]*models.Challenge, error)
	Create(c *models.Challenge) (*models.Challenge, error)
	Update(id uuid.UUID, c *models.Challenge) (*models.Challenge, error)
	Delete(id uuid.UUID) error

	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
)
