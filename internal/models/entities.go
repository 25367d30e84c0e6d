package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects amounts as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Ref points at another backend document. The API sends references either
// as a bare id or as a populated object, so both forms decode into Ref.
type Ref struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Code  string `json:"code,omitempty"`
}

// UnmarshalJSON accepts "id", null, or {"_id": "...", ...}.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// Client is a customer organisation that owns branches.
type Client struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Branch is an operational unit owned by exactly one client.
type Branch struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Address  string `json:"address,omitempty"`
	Client   Ref    `json:"clientId"`
	Staff    []Ref  `json:"staffMembers,omitempty"`
	IsActive bool   `json:"isActive"`
}

// StaffMember is an operator who records transactions for assigned branches.
type StaffMember struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"isActive"`
	Branches []Ref  `json:"branches"`
}

// Assigned reports whether the staff member has at least one branch.
func (s StaffMember) Assigned() bool {
	return len(s.Branches) > 0
}

// TransactionType is the direction of money movement.
type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

// Valid reports whether t is credit or debit.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// Transaction is a ledger entry. Commission and FinalAmount are computed by
// the backend.
type Transaction struct {
	ID            string           `json:"_id"`
	UTRID         string           `json:"utrId"`
	Type          TransactionType  `json:"type"`
	Amount        decimal.Decimal  `json:"amount"`
	Commission    decimal.Decimal  `json:"commission"`
	FinalAmount   decimal.Decimal  `json:"finalAmount"`
	Remark        string           `json:"remark,omitempty"`
	Status        string           `json:"status,omitempty"`
	BalanceBefore *decimal.Decimal `json:"balanceBefore,omitempty"`
	BalanceAfter  *decimal.Decimal `json:"balanceAfter,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	Branch        Ref              `json:"branch"`
	Client        Ref              `json:"client"`
	Staff         Ref              `json:"staff"`
}

// Consistent checks FinalAmount against Amount and Commission for the
// transaction's type.
func (t Transaction) Consistent() bool {
	switch t.Type {
	case Credit:
		return t.FinalAmount.Equal(t.Amount.Sub(t.Commission))
	case Debit:
		return t.FinalAmount.Equal(t.Amount.Add(t.Commission))
	}
	return false
}

// DashboardSummary is a server-computed aggregate for a role or branch.
type DashboardSummary struct {
	TotalCredits     decimal.Decimal  `json:"totalCredits"`
	TotalDebits      decimal.Decimal  `json:"totalDebits"`
	Commission       decimal.Decimal  `json:"commission"`
	TransactionCount int              `json:"transactionCount"`
	WalletBalance    *decimal.Decimal `json:"walletBalance,omitempty"`
}

// EmptyDashboard is the summary shown when a fetch fails or returns nothing.
func EmptyDashboard() DashboardSummary {
	zero := decimal.Zero
	return DashboardSummary{
		TotalCredits:  decimal.Zero,
		TotalDebits:   decimal.Zero,
		Commission:    decimal.Zero,
		WalletBalance: &zero,
	}
}

// Settings holds the backend's system configuration. Rates are percentages.
type Settings struct {
	CommissionRate decimal.Decimal `json:"commissionRate" validate:"gte=0,lte=100"`
	DepositRate    decimal.Decimal `json:"depositRate" validate:"gte=0,lte=100"`
	DailyResetTime string          `json:"dailyResetTime,omitempty"`
	MaxTransaction decimal.Decimal `json:"maxTransaction" validate:"gte=0"`
	MinTransaction decimal.Decimal `json:"minTransaction" validate:"gte=0"`
}
