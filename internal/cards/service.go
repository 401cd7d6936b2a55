package cards

import (
	"context"
	"errors"
	"time"

	"number-heroes/internal/db"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("card not found")

type Service struct {
	db *gorm.DB
}

func NewService(conn *gorm.DB) *Service {
	return &Service{db: conn}
}

func (s *Service) Create(ctx context.Context, title, description string) (*db.Card, error) {
	now := time.Now().UTC()
	card := &db.Card{
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Service) List(ctx context.Context) ([]db.Card, error) {
	var rows []db.Card
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*db.Card, error) {
	var row db.Card
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update patches title and/or description; nil fields are left alone.
func (s *Service) Update(ctx context.Context, id uint, title, description *string) (*db.Card, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title != nil {
		updates["title"] = *title
		row.Title = *title
	}
	if description != nil {
		updates["description"] = *description
		row.Description = *description
	}
	if err := s.db.WithContext(ctx).Model(&db.Card{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Card{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
