// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JosMartins/Drinkster/models"
)

// GormChallengeStore 使用GORM的PostgreSQL目录实现
type GormChallengeStore struct {
	db *gorm.DB
}

// NewGormChallengeStore 创建GORM PostgreSQL数据库连接
func NewGormChallengeStore(host string, port int, user, password, dbname string) (*GormChallengeStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormChallenge{}); err != nil {
		return nil, err
	}

	return &GormChallengeStore{db: db}, nil
}

func (s *GormChallengeStore) RandomChallenge(exclude []uuid.UUID, difficulty models.Difficulty) (*models.Challenge, error) {
	q := s.db.Where("difficulty = ?", string(difficulty))
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}

	var row models.GormChallenge
	if err := q.Order("RANDOM()").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return row.ToChallenge(), nil
}

func (s *GormChallengeStore) CountByDifficulty(difficulty models.Difficulty) (int, error) {
	var count int64
	err := s.db.Model(&models.GormChallenge{}).
		Where("difficulty = ?", string(difficulty)).
		Count(&count).Error
	return int(count), err
}

func (s *GormChallengeStore) CountAll() (int, error) {
	var count int64
	err := s.db.Model(&models.GormChallenge{}).Count(&count).Error
	return int(count), err
}

func (s *GormChallengeStore) FindByID(id uuid.UUID) (*models.Challenge, error) {
	var row models.GormChallenge
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return row.ToChallenge(), nil
}

func (s *GormChallengeStore) FindAll() ([]*models.Challenge, error) {
	var rows []models.GormChallenge
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toChallenges(rows), nil
}

func (s *GormChallengeStore) FindByDifficulty(difficulty models.Difficulty) ([]*models.Challenge, error) {
	var rows []models.GormChallenge
	if err := s.db.Where("difficulty = ?", string(difficulty)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toChallenges(rows), nil
}

func (s *GormChallengeStore) Create(c *models.Challenge) (*models.Challenge, error) {
	row := models.FromChallenge(c)
	if err := s.db.Create(row).Error; err != nil {
		return nil, err
	}
	return row.ToChallenge(), nil
}

func (s *GormChallengeStore) Update(id uuid.UUID, c *models.Challenge) (*models.Challenge, error) {
	var updated *models.Challenge
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row models.GormChallenge
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		next := models.FromChallenge(c)
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			return err
		}
		updated = next.ToChallenge()
		return nil
	})
	return updated, err
}

func (s *GormChallengeStore) Delete(id uuid.UUID) error {
	result := s.db.Delete(&models.GormChallenge{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormChallengeStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toChallenges(rows []models.GormChallenge) []*models.Challenge {
	out := make([]*models.Challenge, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToChallenge())
	}
	return out
}
