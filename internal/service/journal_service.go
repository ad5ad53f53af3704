package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/evanm/mindlog/internal/domain"
	"github.com/evanm/mindlog/internal/events"
	"github.com/evanm/mindlog/internal/repository"
	"github.com/evanm/mindlog/internal/sentiment"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrEmptyEntry         = errors.New("entry text is empty")
	ErrSubmissionInFlight = errors.New("a submission is already in progress for this user")
)

// JournalService runs the capture pipeline for one submission:
// classify, persist, refresh. Steps are strictly sequenced and a user
// can have at most one submission in flight at a time.
type JournalService struct {
	journalRepo repository.JournalRepository
	checkRepo   repository.SentimentCheckRepository
	classifier  sentiment.Classifier
	bus         *events.Bus

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewJournalService(journalRepo repository.JournalRepository, checkRepo repository.SentimentCheckRepository, classifier sentiment.Classifier, bus *events.Bus) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		checkRepo:   checkRepo,
		classifier:  classifier,
		bus:         bus,
		inFlight:    make(map[uuid.UUID]struct{}),
	}
}

// SubmitResult carries the new entry plus the user's refreshed list.
// Entries replaces the client's list wholesale; there is no
// incremental merge.
type SubmitResult struct {
	Entry   *domain.JournalEntry
	Entries []*domain.JournalEntry
}

func (s *JournalService) Submit(ctx context.Context, userID uuid.UUID, rawText string) (*SubmitResult, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyEntry
	}

	if !s.acquire(userID) {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(userID)

	// Tagging is best-effort: a classifier failure degrades to neutral
	// and must never abort the save.
	result, err := s.classifier.Classify(ctx, rawText)
	if err != nil {
		log.Printf("WARN [JournalService.Submit] classifier failed, tagging neutral: %v", err)
		result = sentiment.Result{Label: domain.SentimentNeutral}
	}
	if !result.Label.Valid() {
		result.Label = domain.SentimentNeutral
	}

	entry := &domain.JournalEntry{
		ID:           uuid.New(),
		UserID:       userID,
		EntryText:    rawText,
		SentimentTag: result.Label,
	}

	if err := s.journalRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.recordCheck(ctx, entry, result)

	s.bus.Publish(events.Event{
		Type:    events.TypeEntryCreated,
		UserID:  userID,
		Payload: entry,
	})

	entries, err := s.journalRepo.ListByUserID(ctx, userID)
	if err != nil {
		// The entry is durable at this point; a failed refresh only
		// costs the caller an up-to-date list.
		log.Printf("WARN [JournalService.Submit] list refresh failed: %v", err)
		entries = nil
	}

	return &SubmitResult{Entry: entry, Entries: entries}, nil
}

func (s *JournalService) List(ctx context.Context, userID uuid.UUID) ([]*domain.JournalEntry, error) {
	return s.journalRepo.ListByUserID(ctx, userID)
}

// recordCheck writes the classifier audit row. Best-effort: losing the
// audit trail must not fail a submission that already persisted.
func (s *JournalService) recordCheck(ctx context.Context, entry *domain.JournalEntry, result sentiment.Result) {
	if len(result.Raw) == 0 {
		return
	}

	check := &domain.SentimentCheck{
		ID:          uuid.New(),
		EntryID:     entry.ID,
		Label:       result.Label,
		RawResponse: datatypes.JSON(result.Raw),
		CreatedAt:   time.Now(),
	}
	if err := s.checkRepo.Create(ctx, check); err != nil {
		log.Printf("WARN [JournalService.Submit] failed to record sentiment check: %v", err)
	}
}

func (s *JournalService) acquire(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *JournalService) release(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
