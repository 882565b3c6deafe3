package service

import (
	"context"
	"time"

	"practicevault/internal/domain"
)

// AssistService — дневной лимит запросов помощи. Тот же учет, что и у
// квоты хранилища, только ключ — (пользователь, календарный день):
// новый день — новый ключ, счетчик сбрасывается сам собой.
type AssistService struct {
	counterRepo CounterStore
	dailyLimit  int64
	now         func() time.Time
}

func NewAssistService(counterRepo CounterStore, dailyLimit int64) *AssistService {
	return &AssistService{
		counterRepo: counterRepo,
		dailyLimit:  dailyLimit,
		now:         time.Now,
	}
}

func (s *AssistService) dayKey() string {
	return s.now().UTC().Format("2006-01-02")
}

// Consume списывает одну единицу дневного лимита; отказ — ErrQuotaExceeded.
func (s *AssistService) Consume(ctx context.Context, userID string) error {
	return s.counterRepo.Consume(ctx, userID, s.dayKey(), s.dailyLimit)
}

// Remaining сообщает, сколько запросов осталось на сегодня.
func (s *AssistService) Remaining(ctx context.Context, userID string) (*domain.UsageCounter, int64, error) {
	counter, err := s.counterRepo.Get(ctx, userID, s.dayKey())
	if err != nil {
		return nil, 0, err
	}

	remaining := s.dailyLimit - counter.UsedCount
	if remaining < 0 {
		remaining = 0
	}

	return counter, remaining, nil
}
