package postgres

import (
	"context"

	"github.com/evanm/mindlog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type journalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *journalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(ctx context.Context, entry *domain.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUserID returns every entry owned by userID, most recent first.
// An empty result is a valid outcome, not an error.
func (r *journalRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.JournalEntry, error) {
	var entries []*domain.JournalEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
