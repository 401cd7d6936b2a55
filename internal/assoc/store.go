package assoc

import (
	"context"
	"errors"
	"time"

	"number-heroes/internal/db"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("association not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Repository is the persistence surface the generator, scanner and game
// engine work against.
type Repository interface {
	All(ctx context.Context) ([]db.NumberAssociation, error)
	Primary(ctx context.Context) ([]db.NumberAssociation, error)
	PrimaryForNumber(ctx context.Context, number int) (*db.NumberAssociation, error)
	BestForNumber(ctx context.Context, number int) (*db.NumberAssociation, error)
	PrimarySample(ctx context.Context, limit int) ([]db.NumberAssociation, error)
	SavePrimary(ctx context.Context, assoc *db.NumberAssociation) error
	UpdateRating(ctx context.Context, id uint, rating float64) (*db.NumberAssociation, error)
	MissingNumbers(ctx context.Context, from, to int) ([]int, error)
}

type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) All(ctx context.Context) ([]db.NumberAssociation, error) {
	var rows []db.NumberAssociation
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) Primary(ctx context.Context) ([]db.NumberAssociation, error) {
	var rows []db.NumberAssociation
	err := s.db.WithContext(ctx).
		Where("is_primary = ?", true).
		Order("number asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) PrimaryForNumber(ctx context.Context, number int) (*db.NumberAssociation, error) {
	var row db.NumberAssociation
	err := s.db.WithContext(ctx).
		Where("number = ? AND is_primary = ?", number, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// BestForNumber returns the highest-rated association for a number,
// ties broken by lowest id.
func (s *Store) BestForNumber(ctx context.Context, number int) (*db.NumberAssociation, error) {
	var row db.NumberAssociation
	err := s.db.WithContext(ctx).
		Where("number = ?", number).
		Order("rating desc, id asc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) PrimarySample(ctx context.Context, limit int) ([]db.NumberAssociation, error) {
	var rows []db.NumberAssociation
	err := s.db.WithContext(ctx).
		Where("is_primary = ?", true).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SavePrimary demotes every existing row for the number and inserts the
// new row as primary, all in one transaction. The partial unique index on
// (number) WHERE is_primary backs this up at the schema level.
func (s *Store) SavePrimary(ctx context.Context, assoc *db.NumberAssociation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&db.NumberAssociation{}).
			Where("number = ? AND is_primary = ?", assoc.Number, true).
			Update("is_primary", false).Error
		if err != nil {
			return err
		}
		assoc.IsPrimary = true
		if assoc.CreatedAt.IsZero() {
			assoc.CreatedAt = time.Now().UTC()
		}
		return tx.Create(assoc).Error
	})
}

// UpdateRating folds one vote into the running average.
func (s *Store) UpdateRating(ctx context.Context, id uint, rating float64) (*db.NumberAssociation, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	var row db.NumberAssociation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		row.Rating = nextRating(row.Rating, row.TotalVotes, rating)
		row.TotalVotes++
		return tx.Model(&db.NumberAssociation{}).
			Where("id = ?", id).
			Updates(map[string]any{"rating": row.Rating, "total_votes": row.TotalVotes}).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// nextRating folds one vote into a running average over votes ballots.
func nextRating(current float64, votes int, vote float64) float64 {
	return (current*float64(votes) + vote) / float64(votes+1)
}

// MissingNumbers lists numbers in [from,to] that have no primary row.
func (s *Store) MissingNumbers(ctx context.Context, from, to int) ([]int, error) {
	var present []int
	err := s.db.WithContext(ctx).
		Model(&db.NumberAssociation{}).
		Where("is_primary = ? AND number BETWEEN ? AND ?", true, from, to).
		Distinct().
		Pluck("number", &present).Error
	if err != nil {
		return nil, err
	}
	have := make(map[int]struct{}, len(present))
	for _, n := range present {
		have[n] = struct{}{}
	}
	var missing []int
	for n := from; n <= to; n++ {
		if _, ok := have[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing, nil
}
