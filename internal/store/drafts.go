// Package store persists drafts between requests.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/proposal-desk/internal/draft"
	"github.com/diewo77/proposal-desk/internal/models"
)

var (
	// ErrNotFound is returned for an unknown draft id.
	ErrNotFound = errors.New("draft not found")
	// ErrConflict is returned by Save when the draft changed since it was read.
	ErrConflict = errors.New("draft changed concurrently")
)

type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

// Create stores d under a new id.
func (s *DraftStore) Create(ctx context.Context, d draft.Draft) (string, error) {
	rec, err := record(d)
	if err != nil {
		return "", err
	}
	rec.ID = uuid.NewString()
	rec.Version = 1
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	return rec.ID, nil
}

// Get loads the draft stored under id.
func (s *DraftStore) Get(ctx context.Context, id string) (draft.Draft, error) {
	var rec models.DraftRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return draft.Draft{}, ErrNotFound
	}
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft %s: %w", id, err)
	}
	return decode(rec)
}

// Save replaces the draft stored under id. The stored version must still be
// d.Version; a zero version overwrites unconditionally.
func (s *DraftStore) Save(ctx context.Context, id string, d draft.Draft) error {
	rec, err := record(d)
	if err != nil {
		return err
	}
	q := s.db.WithContext(ctx).Model(&models.DraftRecord{}).Where("id = ?", id)
	if d.Version > 0 {
		q = q.Where("version = ?", d.Version)
	}
	res := q.Updates(map[string]any{
		"kind":      rec.Kind,
		"target_id": rec.TargetID,
		"title":     rec.Title,
		"payload":   rec.Payload,
		"version":   gorm.Expr("version + 1"),
	})
	if res.Error != nil {
		return fmt.Errorf("save draft %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.DraftRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("save draft %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *DraftStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.DraftRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete draft %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the stored drafts of kind, newest first, without payloads.
// An empty kind lists every draft.
func (s *DraftStore) List(ctx context.Context, kind draft.Kind) ([]models.DraftRecord, error) {
	var out []models.DraftRecord
	q := s.db.WithContext(ctx).Select("id", "kind", "target_id", "title", "created_at", "updated_at")
	if kind != "" {
		q = q.Where("kind = ?", string(kind))
	}
	if err := q.Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return out, nil
}

func record(d draft.Draft) (models.DraftRecord, error) {
	if !d.Kind.Valid() {
		return models.DraftRecord{}, fmt.Errorf("unknown draft kind %q", d.Kind)
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return models.DraftRecord{}, fmt.Errorf("encode draft: %w", err)
	}
	return models.DraftRecord{
		Kind:     string(d.Kind),
		TargetID: d.TargetID,
		Title:    d.Title(),
		Payload:  datatypes.JSON(payload),
	}, nil
}

func decode(rec models.DraftRecord) (draft.Draft, error) {
	var d draft.Draft
	if err := json.Unmarshal(rec.Payload, &d); err != nil {
		return draft.Draft{}, fmt.Errorf("decode draft %s: %w", rec.ID, err)
	}
	d.Version = rec.Version
	// Clone fills the maps a null payload field leaves nil.
	return d.Clone(), nil
}
