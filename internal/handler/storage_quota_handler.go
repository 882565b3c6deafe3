package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"practicevault/internal/auth"
	"practicevault/internal/domain"
	"practicevault/internal/service"
)

type StorageQuotaHandler struct {
	quotaService *service.StorageQuotaService
}

func NewStorageQuotaHandler(quotaService *service.StorageQuotaService) *StorageQuotaHandler {
	return &StorageQuotaHandler{
		quotaService: quotaService,
	}
}

func (h *StorageQuotaHandler) GetQuotaInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quotaInfo, err := h.quotaService.GetQuotaInfo(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quotaInfo)
}

// Эндпоинт для админа для изменения квоты пользователя
func (h *StorageQuotaHandler) UpdateQuotaLimit(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r) {
		writeError(w, fmt.Errorf("%w: quota limits are managed by administrators", domain.ErrPermissionDenied))
		return
	}

	var req struct {
		UserID   string `json:"user_id"`
		NewLimit int64  `json:"new_limit"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.quotaService.UpdateQuotaLimit(r.Context(), req.UserID, req.NewLimit); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
