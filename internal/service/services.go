package service

import (
	"github.com/evanm/mindlog/internal/config"
	"github.com/evanm/mindlog/internal/events"
	"github.com/evanm/mindlog/internal/repository"
	"github.com/evanm/mindlog/internal/sentiment"
)

type Services struct {
	Auth    *AuthService
	Journal *JournalService
}

func NewServices(repos *repository.Repositories, classifier sentiment.Classifier, bus *events.Bus, cfg *config.Config) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, repos.Session, bus, cfg),
		Journal: NewJournalService(repos.Journal, repos.SentimentCheck, classifier, bus),
	}
}
