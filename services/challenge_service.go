// services/challenge_service.go
package services

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/JosMartins/Drinkster/challenge"
	"github.com/JosMartins/Drinkster/models"
	"github.com/JosMartins/Drinkster/persistence"
)

// ChallengeService fronts the catalog store with a cached per-difficulty
// count, refreshed on every catalog write. It implements challenge.Catalog
// for the selector.
type ChallengeService struct {
	store persistence.ChallengeStore

	mu    sync.RWMutex
	stats models.ChallengeStats
}

func NewChallengeService(store persistence.ChallengeStore) (*ChallengeService, error) {
	s := &ChallengeService{store: store}
	if err := s.RefreshStats(); err != nil {
		return nil, err
	}
	return s, nil
}

// RandomChallenge draws from the catalog, mapping an exhausted tier to
// challenge.ErrNoChallenge for the selector.
func (s *ChallengeService) RandomChallenge(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error) {
	c, err := s.store.RandomChallenge(exclude, difficulty)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, challenge.ErrNoChallenge
		}
		return nil, err
	}
	return c, nil
}

// Stats returns the cached per-tier counts.
func (s *ChallengeService) Stats() models.ChallengeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// RefreshStats reloads the per-tier counts from the store.
func (s *ChallengeService) RefreshStats() error {
	var stats models.ChallengeStats
	var err error

	if stats.Easy, err = s.store.CountByDifficulty(models.DifficultyEasy); err != nil {
		return err
	}
	if stats.Medium, err = s.store.CountByDifficulty(models.DifficultyMedium); err != nil {
		return err
	}
	if stats.Hard, err = s.store.CountByDifficulty(models.DifficultyHard); err != nil {
		return err
	}
	if stats.Extreme, err = s.store.CountByDifficulty(models.DifficultyExtreme); err != nil {
		return err
	}
	if stats.Total, err = s.store.CountAll(); err != nil {
		return err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// CRUD surface for catalog administration. Writes refresh the stats cache.

func (s *ChallengeService) FindByID(id uuid.UUID) (*models.Challenge, error) {
	return s.store.FindByID(id)
}

func (s *ChallengeService) FindAll() ([]*models.Challenge, error) {
	return s.store.FindAll()
}

func (s *ChallengeService) FindByDifficulty(difficulty models.Difficulty) ([]*models.Challenge, error) {
	return s.store.FindByDifficulty(difficulty)
}

func (s *ChallengeService) Create(c *models.Challenge) (*models.Challenge, error) {
	created, err := s.store.Create(c)
	if err != nil {
		return nil, err
	}
	if err := s.RefreshStats(); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ChallengeService) Update(id uuid.UUID, c *models.Challenge) (*models.Challenge, error) {
	updated, err := s.store.Update(id, c)
	if err != nil {
		return nil, err
	}
	// An update may move the challenge across tiers.
	if err := s.RefreshStats(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ChallengeService) Delete(id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	return s.RefreshStats()
}
