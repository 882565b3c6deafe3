package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"practicevault/internal/domain"
)

func TestAccessGuard(t *testing.T) {
	guard := NewAccessGuard()

	folder := &domain.Folder{
		ID:        1,
		OwnerID:   "alice",
		MemberIDs: []string{"alice", "bob"},
	}

	assert.True(t, guard.IsOwner(folder, "alice"))
	assert.False(t, guard.IsOwner(folder, "bob"))

	assert.True(t, guard.IsMember(folder, "alice"))
	assert.True(t, guard.IsMember(folder, "bob"))
	assert.False(t, guard.IsMember(folder, "mallory"))
}

func TestAccessGuardDegenerateInputs(t *testing.T) {
	guard := NewAccessGuard()

	assert.False(t, guard.IsOwner(nil, "alice"))
	assert.False(t, guard.IsMember(nil, "alice"))

	folder := &domain.Folder{OwnerID: "alice"}
	assert.False(t, guard.IsOwner(folder, ""))
	assert.False(t, guard.IsMember(folder, ""))

	// Владелец без явной записи в участниках все равно участник
	folder.MemberIDs = nil
	assert.True(t, guard.IsMember(folder, "alice"))
}
