package service

import (
	"practicevault/internal/domain"
)

// AccessGuard — чистые предикаты доступа над папкой. Состояния не несет,
// к базе не ходит; каждая мутирующая и листающая операция обязана
// консультироваться здесь, а не проверять owner_id на месте.
type AccessGuard struct{}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{}
}

// IsOwner — является ли пользователь владельцем папки.
func (g *AccessGuard) IsOwner(folder *domain.Folder, userID string) bool {
	if folder == nil || userID == "" {
		return false
	}
	return folder.OwnerID == userID
}

// IsMember — состоит ли пользователь в участниках папки.
// Владелец всегда участник.
func (g *AccessGuard) IsMember(folder *domain.Folder, userID string) bool {
	if folder == nil || userID == "" {
		return false
	}
	return folder.OwnerID == userID || folder.HasMember(userID)
}
