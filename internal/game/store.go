package game

import (
	"context"
	"errors"

	"number-heroes/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) Create(ctx context.Context, game *db.Game) error {
	return s.db.WithContext(ctx).Create(game).Error
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*db.Game, error) {
	var row db.Game
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) Save(ctx context.Context, game *db.Game) error {
	return s.db.WithContext(ctx).Save(game).Error
}
