package domain

import (
	"time"
)

// Folder представляет общую папку с набором участников.
// Владелец всегда входит в MemberIDs.
type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	IsPublic  bool      `json:"is_public" db:"is_public"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	MemberIDs []string  `json:"member_ids"`
}

// HasMember проверяет участие пользователя в папке.
func (f *Folder) HasMember(userID string) bool {
	for _, id := range f.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type FolderContent struct {
	Folder Folder `json:"folder"`
	Items  []Item `json:"items"`
}
