// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/JosMartins/Drinkster/models"
)

// PostgresChallengeStore is the raw database/sql catalog implementation,
// kept alongside the GORM one behind the same interface.
type PostgresChallengeStore struct {
	db *sql.DB
}

// NewPostgresChallengeStore 创建 PostgreSQL 数据库连接
func NewPostgresChallengeStore(host string, port int, user, password, dbname string) (*PostgresChallengeStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgresChallengeStore{db: db}, nil
}

func initTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS challenges (
		id UUID PRIMARY KEY,
		text TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		sexes TEXT[],
		players INT NOT NULL DEFAULT 1,
		sips INT NOT NULL,
		type TEXT NOT NULL,
		penalty_text TEXT,
		penalty_rounds INT,
		ai BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_challenges_difficulty ON challenges (difficulty);
	`
	_, err := db.Exec(query)
	return err
}

const challengeColumns = "id, text, difficulty, sexes, players, sips, type, penalty_text, penalty_rounds"

func (s *PostgresChallengeStore) RandomChallenge(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error) {
	var row *sql.Row
	if len(exclude) > 0 {
		ids := make([]string, 0, len(exclude))
		for _, id := range exclude {
			ids = append(ids, id.String())
		}
		row = s.db.QueryRow(
			"SELECT "+challengeColumns+" FROM challenges WHERE difficulty = $1 AND NOT (id = ANY($2)) ORDER BY RANDOM() LIMIT 1",
			string(difficulty), pq.Array(ids))
	} else {
		row = s.db.QueryRow(
			"SELECT "+challengeColumns+" FROM challenges WHERE difficulty = $1 ORDER BY RANDOM() LIMIT 1",
			string(difficulty))
	}
	return scanChallenge(row)
}

func (s *PostgresChallengeStore) CountByDifficulty(difficulty models.Difficulty) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM challenges WHERE difficulty = $1", string(difficulty)).Scan(&count)
	return count, err
}

func (s *PostgresChallengeStore) CountAll() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM challenges").Scan(&count)
	return count, err
}

func (s *PostgresChallengeStore) FindByID(id uuid.UUID) (*models.Challenge, error) {
	row := s.db.QueryRow("SELECT "+challengeColumns+" FROM challenges WHERE id = $1", id)
	return scanChallenge(row)
}

func (s *PostgresChallengeStore) FindAll() ([]*models.Challenge, error) {
	return s.queryChallenges("SELECT " + challengeColumns + " FROM challenges")
}

func (s *PostgresChallengeStore) FindByDifficulty(difficulty models.Difficulty) ([]*models.Challenge, error) {
	return s.queryChallenges(
		"SELECT "+challengeColumns+" FROM challenges WHERE difficulty = $1", string(difficulty))
}

func (s *PostgresChallengeStore) Create(c *models.Challenge) (*models.Challenge, error) {
	id := c.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	sexes := make([]string, 0, len(c.Sexes))
	for _, sex := range c.Sexes {
		sexes = append(sexes, string(sex))
	}

	var penaltyText *string
	var penaltyRounds *int
	if c.Penalty != nil {
		penaltyText = &c.Penalty.Text
		penaltyRounds = &c.Penalty.Rounds
	}

	_, err := s.db.Exec(
		`INSERT INTO challenges (id, text, difficulty, sexes, players, sips, type, penalty_text, penalty_rounds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, c.Text, string(c.Difficulty), pq.Array(sexes), c.Players, c.Sips, string(c.Type),
		penaltyText, penaltyRounds)
	if err != nil {
		return nil, err
	}

	created := *c
	created.ID = id
	return &created, nil
}

func (s *PostgresChallengeStore) Update(id uuid.UUID, c *models.Challenge) (*models.Challenge, error) {
	sexes := make([]string, 0, len(c.Sexes))
	for _, sex := range c.Sexes {
		sexes = append(sexes, string(sex))
	}

	var penaltyText *string
	var penaltyRounds *int
	if c.Penalty != nil {
		penaltyText = &c.Penalty.Text
		penaltyRounds = &c.Penalty.Rounds
	}

	result, err := s.db.Exec(
		`UPDATE challenges SET text = $2, difficulty = $3, sexes = $4, players = $5,
		 sips = $6, type = $7, penalty_text = $8, penalty_rounds = $9, updated_at = NOW()
		 WHERE id = $1`,
		id, c.Text, string(c.Difficulty), pq.Array(sexes), c.Players, c.Sips, string(c.Type),
		penaltyText, penaltyRounds)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrRecordNotFound
	}

	updated := *c
	updated.ID = id
	return &updated, nil
}

func (s *PostgresChallengeStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM challenges WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresChallengeStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		c             models.Challenge
		sexes         pq.StringArray
		difficulty    string
		challengeType string
		penaltyText   sql.NullString
		penaltyRounds sql.NullInt64
	)

	err := row.Scan(&c.ID, &c.Text, &difficulty, &sexes, &c.Players, &c.Sips, &challengeType,
		&penaltyText, &penaltyRounds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	c.Difficulty = models.Difficulty(difficulty)
	c.Type = models.ChallengeType(challengeType)
	for _, s := range sexes {
		c.Sexes = append(c.Sexes, models.Sex(s))
	}
	if penaltyText.Valid {
		c.Penalty = &models.Penalty{
			Text:   penaltyText.String,
			Rounds: int(penaltyRounds.Int64),
		}
	}
	return &c, nil
}

func (s *PostgresChallengeStore) queryChallenges(query string, args ...any) ([]*models.Challenge, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
