package db

import (
	"time"

	"gorm.io/datatypes"
)

// UserProgress tracks which numbers of the current pool a player has
// completed. One row per player.
type UserProgress struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PlayerID  string         `gorm:"size:64;not null;uniqueIndex" json:"player_id"`
	Pool      int            `gorm:"not null;default:0" json:"pool"`
	Completed datatypes.JSON `gorm:"type:jsonb" json:"completed"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }
