package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/evanm/mindlog/internal/api/middleware"
	"github.com/evanm/mindlog/internal/domain"
	"github.com/evanm/mindlog/internal/service"
)

type JournalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

type CreateEntryRequest struct {
	EntryText string `json:"entryText"`
}

type EntryResponse struct {
	ID           string    `json:"id"`
	EntryText    string    `json:"entryText"`
	SentimentTag string    `json:"sentimentTag"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateEntryResponse struct {
	Entry   EntryResponse   `json:"entry"`
	Entries []EntryResponse `json:"entries"`
}

type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.journalService.Submit(r.Context(), userID, req.EntryText)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyEntry):
			http.Error(w, "Entry text is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrSubmissionInFlight):
			http.Error(w, "A submission is already in progress", http.StatusConflict)
		default:
			// The client keeps its unsaved text; surface only a generic
			// failure message.
			http.Error(w, "Failed to save journal entry", http.StatusInternalServerError)
		}
		return
	}

	resp := CreateEntryResponse{
		Entry:   toEntryResponse(result.Entry),
		Entries: toEntryResponses(result.Entries),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.journalService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to load journal entries", http.StatusInternalServerError)
		return
	}

	resp := ListEntriesResponse{Entries: toEntryResponses(entries)}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func toEntryResponse(entry *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		ID:           entry.ID.String(),
		EntryText:    entry.EntryText,
		SentimentTag: string(entry.SentimentTag),
		CreatedAt:    entry.CreatedAt,
	}
}

func toEntryResponses(entries []*domain.JournalEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	return out
}
