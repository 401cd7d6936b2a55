package db

import "time"

// NumberAssociation is one (hero, action, object) mnemonic for a number.
// Several rows may exist per number; at most one is the primary.
type NumberAssociation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Number      int       `gorm:"not null;index" json:"number"`
	Hero        string    `gorm:"size:128;not null" json:"hero"`
	Action      string    `gorm:"size:128;not null" json:"action"`
	Object      string    `gorm:"size:128;not null" json:"object"`
	Explanation string    `gorm:"type:text" json:"explanation"`
	IsPrimary   bool      `gorm:"not null;default:false;index" json:"is_primary"`
	Rating      float64   `gorm:"not null;default:0" json:"rating"`
	TotalVotes  int       `gorm:"not null;default:0" json:"total_votes"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (NumberAssociation) TableName() string { return "number_associations" }
