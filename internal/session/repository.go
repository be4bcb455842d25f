// File: internal/session/repository.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authportal/internal/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultKey is the row the session is stored under.
const DefaultKey = "@portal:session"

// entry is one persisted key/value row.
type entry struct {
	Key       string    `gorm:"column:session_key;primaryKey;size:128"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM.
func (entry) TableName() string {
	return "session_entries"
}

// GORMRepository stores the session as one JSON row.
type GORMRepository struct {
	db  *gorm.DB
	key string
}

// NewGORMRepository creates the table if needed.
func NewGORMRepository(db *gorm.DB, key string) (*GORMRepository, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}
	return &GORMRepository{db: db, key: key}, nil
}

// Load returns common.ErrNotFound when nothing is stored.
func (r *GORMRepository) Load(ctx context.Context) (*Session, error) {
	var e entry
	err := r.db.WithContext(ctx).Where("session_key = ?", r.key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("database error loading session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return nil, fmt.Errorf("stored session is corrupt: %w", err)
	}
	return &s, nil
}

func (r *GORMRepository) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	e := entry{Key: r.key, Value: raw, UpdatedAt: time.Now().UTC()}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("database error saving session: %w", err)
	}
	return nil
}

func (r *GORMRepository) Delete(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("session_key = ?", r.key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("database error deleting session: %w", err)
	}
	return nil
}
