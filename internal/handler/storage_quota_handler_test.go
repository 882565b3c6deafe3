package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicevault/internal/domain"
	"practicevault/internal/service"
)

type stubQuotaStore struct {
	limits map[string]int64
}

func (s *stubQuotaStore) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	return &domain.StorageQuota{OwnerID: ownerID, TotalBytesLimit: s.limits[ownerID]}, nil
}

func (s *stubQuotaStore) Reserve(ctx context.Context, ownerID string, bytes int64) error {
	return nil
}

func (s *stubQuotaStore) Release(ctx context.Context, ownerID string, bytes int64) error {
	return nil
}

func (s *stubQuotaStore) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	s.limits[ownerID] = newLimit
	return nil
}

func TestUpdateQuotaLimitRequiresAdmin(t *testing.T) {
	store := &stubQuotaStore{limits: map[string]int64{"bob": 100}}
	h := NewStorageQuotaHandler(service.NewStorageQuotaService(store))

	body := []byte(`{"user_id":"bob","new_limit":500}`)

	// Обычный пользователь, даже аутентифицированный — отказ, лимит не тронут
	req := httptest.NewRequest(http.MethodPut, "/v1/quota/limit", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "mallory")
	rec := httptest.NewRecorder()
	h.UpdateQuotaLimit(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(100), store.limits["bob"])

	// Запрос, помеченный шлюзом как административный — проходит
	req = httptest.NewRequest(http.MethodPut, "/v1/quota/limit", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "admin")
	req.Header.Set("X-Admin", "true")
	rec = httptest.NewRecorder()
	h.UpdateQuotaLimit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(500), store.limits["bob"])
}
