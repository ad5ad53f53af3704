package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/evanm/mindlog/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}

	userID, err := uuid.Parse(authResp.User.ID)
	if err != nil {
		t.Fatalf("failed to parse user ID: %v", err)
	}

	user := &domain.User{
		ID:    userID,
		Email: authResp.User.Email,
	}

	return user, authResp.AccessToken
}

// EntryBuilder creates journal entries directly in the database
type EntryBuilder struct {
	userID    uuid.UUID
	entryText string
	sentiment domain.SentimentLabel
	createdAt time.Time
}

// NewEntryBuilder creates a new EntryBuilder with default values
func NewEntryBuilder(userID uuid.UUID) *EntryBuilder {
	return &EntryBuilder{
		userID:    userID,
		entryText: "Today was an ordinary day.",
		sentiment: domain.SentimentNeutral,
		createdAt: time.Now(),
	}
}

// WithText sets the entry text
func (b *EntryBuilder) WithText(text string) *EntryBuilder {
	b.entryText = text
	return b
}

// WithSentiment sets the sentiment tag
func (b *EntryBuilder) WithSentiment(label domain.SentimentLabel) *EntryBuilder {
	b.sentiment = label
	return b
}

// WithCreatedAt sets the creation timestamp
func (b *EntryBuilder) WithCreatedAt(ts time.Time) *EntryBuilder {
	b.createdAt = ts
	return b
}

// Build inserts the entry and returns it
func (b *EntryBuilder) Build(t *testing.T, db *gorm.DB) *domain.JournalEntry {
	t.Helper()

	entry := &domain.JournalEntry{
		ID:           uuid.New(),
		UserID:       b.userID,
		EntryText:    b.entryText,
		SentimentTag: b.sentiment,
		CreatedAt:    b.createdAt,
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create journal entry: %v", err)
	}

	return entry
}
