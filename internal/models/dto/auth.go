package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hongminglow/ledgerdash/internal/models"
)

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,notblank"`
}

// LoginData is the "data" object of a successful login. Branches may arrive
// as ids or populated objects.
type LoginData struct {
	Token         string           `json:"token"`
	ID            string           `json:"_id"`
	Name          string           `json:"name"`
	Phone         string           `json:"phone"`
	Role          models.Role      `json:"role"`
	ClientID      models.Ref       `json:"clientId"`
	WalletBalance *decimal.Decimal `json:"walletBalance,omitempty"`
	Branches      []models.Ref     `json:"branches"`
}

// User returns the cacheable user record with the token split out. The
// current branch defaults to the first assigned branch.
func (d LoginData) User() models.User {
	ids := make([]string, 0, len(d.Branches))
	for _, b := range d.Branches {
		if b.ID != "" {
			ids = append(ids, b.ID)
		}
	}
	u := models.User{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Role:          d.Role,
		ClientID:      d.ClientID.ID,
		WalletBalance: d.WalletBalance,
		BranchIDs:     ids,
	}
	u.CurrentBranchID = u.DefaultBranch()
	return u
}
