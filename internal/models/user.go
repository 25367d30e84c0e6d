package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// User is the cached user record persisted under the "user" key. The bearer
// token is kept apart from it.
type User struct {
	ID              string           `json:"_id"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	Role            Role             `json:"role"`
	ClientID        string           `json:"clientId,omitempty"`
	WalletBalance   *decimal.Decimal `json:"walletBalance,omitempty"`
	BranchIDs       []string         `json:"branches"`
	CurrentBranchID string           `json:"currentBranch,omitempty"`
}

// HasBranch reports whether branchID is one of the user's assigned branches.
func (u User) HasBranch(branchID string) bool {
	return branchID != "" && slices.Contains(u.BranchIDs, branchID)
}

// DefaultBranch returns the first assigned branch, or "" when none are assigned.
func (u User) DefaultBranch() string {
	if len(u.BranchIDs) == 0 {
		return ""
	}
	return u.BranchIDs[0]
}

// Session is an authenticated user together with its bearer token.
type Session struct {
	User
	Token string `json:"-"`
}
