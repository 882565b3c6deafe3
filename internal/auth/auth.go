package auth

import (
	"fmt"
	"net/http"
)

// Идентификацию выполняет платформенный шлюз: сюда запрос приходит уже
// аутентифицированным, доверенный идентификатор пользователя — в заголовке.
const (
	userHeader  = "X-User-ID"
	adminHeader = "X-Admin"
)

// UserID извлекает идентификатор пользователя из запроса.
func UserID(r *http.Request) (string, error) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		return "", fmt.Errorf("no %s header", userHeader)
	}

	return userID, nil
}

// IsAdmin сообщает, пометил ли шлюз запрос как административный.
// Заголовок ставит только шлюз, из клиентских запросов он вырезается.
func IsAdmin(r *http.Request) bool {
	return r.Header.Get(adminHeader) == "true"
}
