package models

import (
	"time"

	"gorm.io/datatypes"
)

// DraftRecord persists an entity under construction between requests.
type DraftRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Kind      string         `gorm:"size:20;index;not null" json:"kind"`
	TargetID  int64          `gorm:"index" json:"target_id,omitempty"`
	Title     string         `gorm:"size:255" json:"title"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	Version   int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (DraftRecord) TableName() string { return "drafts" }
