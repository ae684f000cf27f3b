package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visitor-management-backend/internal/model"
)

// Document keys as seen by any other consumer of the storage table.
const (
	KeyVisitors      = "visitors"
	KeyToMeetOptions = "toMeetOptions"

	// probeKey is written and removed ahead of every real write to detect
	// an exhausted storage backend before the document is touched.
	probeKey = "__storage_probe__"
)

// ErrStorageQuota indicates the backend refused the probe write. The
// document being saved is left untouched.
var ErrStorageQuota = errors.New("storage quota exhausted")

// Store is the single source of truth for the visitor collection and the
// to-meet suggestion list. Both are whole-document reads and writes; there
// is no partial update.
type Store interface {
	LoadVisitors(ctx context.Context) ([]model.Visitor, error)
	SaveVisitors(ctx context.Context, visitors []model.Visitor) error
	LoadToMeetOptions(ctx context.Context) ([]string, error)
	SaveToMeetOptions(ctx context.Context, options []string) error
	DB() *gorm.DB
}

// gormStore implements the Store interface on a key-value table.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for relational tables that live
// alongside the documents (push subscriptions).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// LoadVisitors returns the stored visitor collection. A missing or
// unparseable document is treated as an empty collection, never as an error.
func (s *gormStore) LoadVisitors(ctx context.Context) ([]model.Visitor, error) {
	raw, found, err := s.loadRaw(ctx, KeyVisitors)
	if err != nil {
		return nil, err
	}
	if !found {
		return []model.Visitor{}, nil
	}

	var visitors []model.Visitor
	if err := json.Unmarshal([]byte(raw), &visitors); err != nil {
		log.Printf("store: %q document is not valid JSON, treating as empty: %v", KeyVisitors, err)
		return []model.Visitor{}, nil
	}
	if visitors == nil {
		visitors = []model.Visitor{}
	}
	return visitors, nil
}

// SaveVisitors replaces the whole visitor document.
func (s *gormStore) SaveVisitors(ctx context.Context, visitors []model.Visitor) error {
	if visitors == nil {
		visitors = []model.Visitor{}
	}
	return s.saveDocument(ctx, KeyVisitors, visitors)
}

// LoadToMeetOptions returns the stored suggestion list, empty when absent
// or corrupt.
func (s *gormStore) LoadToMeetOptions(ctx context.Context) ([]string, error) {
	raw, found, err := s.loadRaw(ctx, KeyToMeetOptions)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		log.Printf("store: %q document is not valid JSON, treating as empty: %v", KeyToMeetOptions, err)
		return []string{}, nil
	}
	if options == nil {
		options = []string{}
	}
	return options, nil
}

// SaveToMeetOptions replaces the whole suggestion list document.
func (s *gormStore) SaveToMeetOptions(ctx context.Context, options []string) error {
	if options == nil {
		options = []string{}
	}
	return s.saveDocument(ctx, KeyToMeetOptions, options)
}

func (s *gormStore) loadRaw(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load document %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// saveDocument writes the probe sentinel, removes it, then upserts the real
// document, all in one transaction so a refused write leaves no trace.
func (s *gormStore) saveDocument(ctx context.Context, key string, doc any) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", key, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		probe := model.KVEntry{Key: probeKey, Value: "1"}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&probe).Error; err != nil {
			if isQuotaError(err) {
				return fmt.Errorf("probe write for %q refused: %w", key, ErrStorageQuota)
			}
			return fmt.Errorf("probe write for %q failed: %w", key, err)
		}
		if err := tx.Delete(&model.KVEntry{}, "key = ?", probeKey).Error; err != nil {
			return fmt.Errorf("probe cleanup for %q failed: %w", key, err)
		}

		entry := model.KVEntry{Key: key, Value: string(encoded)}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error; err != nil {
			if isQuotaError(err) {
				return fmt.Errorf("write for %q refused: %w", key, ErrStorageQuota)
			}
			return fmt.Errorf("failed to save document %q: %w", key, err)
		}
		return nil
	})
}

// isQuotaError recognizes backend "out of space" failures. SQLite reports
// SQLITE_FULL, Postgres uses error class 53.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "no space left") ||
		strings.Contains(msg, "sqlstate 53")
}
