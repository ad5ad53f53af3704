package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SentimentLabel is the closed set of tags a journal entry can carry.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// JournalEntry is one durable journal record. Entries are insert-only:
// no update or delete path exists, and created_at is assigned once at insert.
type JournalEntry struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	EntryText    string         `json:"entryText" gorm:"not null"`
	SentimentTag SentimentLabel `json:"sentimentTag" gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
}

func (JournalEntry) TableName() string {
	return "journals"
}

// SentimentCheck records the classifier's raw payload for an entry so
// tagging decisions stay auditable after the fact.
type SentimentCheck struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EntryID     uuid.UUID      `json:"entryId" gorm:"type:uuid;not null;index"`
	Label       SentimentLabel `json:"label" gorm:"type:varchar(16);not null"`
	RawResponse datatypes.JSON `json:"rawResponse"`
	CreatedAt   time.Time      `json:"createdAt"`
}
