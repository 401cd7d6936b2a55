package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Game struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string         `gorm:"size:32;not null;index" json:"type"`
	Number      int            `gorm:"not null" json:"number"`
	PlayerID    *string        `gorm:"size:64;index" json:"player_id,omitempty"`
	Status      string         `gorm:"size:16;not null" json:"status"`
	Difficulty  int            `gorm:"not null;default:1" json:"difficulty"`
	Settings    datatypes.JSON `gorm:"type:jsonb" json:"settings,omitempty"`
	State       datatypes.JSON `gorm:"type:jsonb" json:"state"`
	Result      datatypes.JSON `gorm:"type:jsonb" json:"result"`
	Feedback    datatypes.JSON `gorm:"type:jsonb" json:"feedback,omitempty"`
	Points      int            `gorm:"not null;default:0" json:"points"`
	XP          int            `gorm:"column:xp;not null;default:0" json:"xp"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}
