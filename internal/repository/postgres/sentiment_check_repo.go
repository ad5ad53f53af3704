package postgres

import (
	"context"

	"github.com/evanm/mindlog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sentimentCheckRepository struct {
	db *gorm.DB
}

func NewSentimentCheckRepository(db *gorm.DB) *sentimentCheckRepository {
	return &sentimentCheckRepository{db: db}
}

func (r *sentimentCheckRepository) Create(ctx context.Context, check *domain.SentimentCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

func (r *sentimentCheckRepository) GetByEntryID(ctx context.Context, entryID uuid.UUID) (*domain.SentimentCheck, error) {
	var check domain.SentimentCheck
	err := r.db.WithContext(ctx).First(&check, "entry_id = ?", entryID).Error
	if err != nil {
		return nil, err
	}
	return &check, nil
}
