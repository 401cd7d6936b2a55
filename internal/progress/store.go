package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"number-heroes/internal/db"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPoolIncomplete = errors.New("current pool is not complete")

// Progress is the read model for a player's pool progression. Pool p
// covers numbers p*poolSize .. p*poolSize+poolSize-1.
type Progress struct {
	PlayerID  string `json:"player_id"`
	Pool      int    `json:"pool"`
	PoolSize  int    `json:"pool_size"`
	Completed []int  `json:"completed"`
}

type Store struct {
	db       *gorm.DB
	poolSize int
}

func NewStore(conn *gorm.DB, poolSize int) *Store {
	if poolSize <= 0 {
		poolSize = 10
	}
	return &Store{db: conn, poolSize: poolSize}
}

// Get returns the player's progress; players without a row start at pool
// zero with nothing completed.
func (s *Store) Get(ctx context.Context, playerID string) (*Progress, error) {
	var row db.UserProgress
	err := s.db.WithContext(ctx).Where("player_id = ?", playerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Progress{PlayerID: playerID, PoolSize: s.poolSize, Completed: []int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(&row)
}

// MarkCompleted records one finished number in the player's current pool.
func (s *Store) MarkCompleted(ctx context.Context, playerID string, number int) (*Progress, error) {
	var out *Progress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.lockRow(tx, playerID)
		if err != nil {
			return err
		}
		completed, err := decodeCompleted(row.Completed)
		if err != nil {
			return err
		}
		for _, n := range completed {
			if n == number {
				out, err = s.view(row)
				return err
			}
		}
		completed = append(completed, number)
		encoded, err := json.Marshal(completed)
		if err != nil {
			return err
		}
		row.Completed = datatypes.JSON(encoded)
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		out, err = s.view(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdvancePool moves the player to the next pool once every number of the
// current batch is completed, clearing the completed list.
func (s *Store) AdvancePool(ctx context.Context, playerID string) (*Progress, error) {
	var out *Progress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.lockRow(tx, playerID)
		if err != nil {
			return err
		}
		completed, err := decodeCompleted(row.Completed)
		if err != nil {
			return err
		}
		have := make(map[int]struct{}, len(completed))
		for _, n := range completed {
			have[n] = struct{}{}
		}
		start := row.Pool * s.poolSize
		for n := start; n < start+s.poolSize; n++ {
			if _, ok := have[n]; !ok {
				return ErrPoolIncomplete
			}
		}
		row.Pool++
		row.Completed = datatypes.JSON("[]")
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		out, err = s.view(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) lockRow(tx *gorm.DB, playerID string) (*db.UserProgress, error) {
	var row db.UserProgress
	err := tx.Where("player_id = ?", playerID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = db.UserProgress{
			PlayerID:  playerID,
			Pool:      0,
			Completed: datatypes.JSON("[]"),
			UpdatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) view(row *db.UserProgress) (*Progress, error) {
	completed, err := decodeCompleted(row.Completed)
	if err != nil {
		return nil, err
	}
	return &Progress{
		PlayerID:  row.PlayerID,
		Pool:      row.Pool,
		PoolSize:  s.poolSize,
		Completed: completed,
	}, nil
}

func decodeCompleted(raw []byte) ([]int, error) {
	if len(raw) == 0 {
		return []int{}, nil
	}
	var completed []int
	if err := json.Unmarshal(raw, &completed); err != nil {
		return nil, fmt.Errorf("failed to decode completed numbers: %w", err)
	}
	if completed == nil {
		completed = []int{}
	}
	return completed, nil
}
