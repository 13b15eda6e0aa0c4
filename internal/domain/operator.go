package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAccounts Role = "accounts"
	RoleViewer   Role = "viewer"
)

// Operator is a dashboard user. The role decides which ledger actions
// the gateway lets through (viewers cannot submit payments).
type Operator struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// CanMutate reports whether the role may record payments or close
// accounts.
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleAccounts
}
