package handler

import (
	"errors"
	"net/http"

	"practicevault/internal/auth"
	"practicevault/internal/domain"
	"practicevault/internal/service"
)

type AssistHandler struct {
	assistService *service.AssistService
}

func NewAssistHandler(assistService *service.AssistService) *AssistHandler {
	return &AssistHandler{
		assistService: assistService,
	}
}

// Consume списывает одну единицу дневного лимита помощи.
// Исчерпанный лимит — 429, а не 507: место тут ни при чем.
func (h *AssistHandler) Consume(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.assistService.Consume(r.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			http.Error(w, "Daily assist limit reached", http.StatusTooManyRequests)
			return
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AssistHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	counter, remaining, err := h.assistService.Remaining(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"used":      counter.UsedCount,
		"remaining": remaining,
	})
}
