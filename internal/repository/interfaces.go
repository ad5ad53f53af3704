package repository

import (
	"context"

	"github.com/evanm/mindlog/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type JournalRepository interface {
	Create(ctx context.Context, entry *domain.JournalEntry) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.JournalEntry, error)
}

type SentimentCheckRepository interface {
	Create(ctx context.Context, check *domain.SentimentCheck) error
	GetByEntryID(ctx context.Context, entryID uuid.UUID) (*domain.SentimentCheck, error)
}

type Repositories struct {
	User           UserRepository
	Session        SessionRepository
	Journal        JournalRepository
	SentimentCheck SentimentCheckRepository
}
