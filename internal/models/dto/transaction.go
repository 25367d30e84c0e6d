package dto

import (
	"github.com/shopspring/decimal"

	"github.com/hongminglow/ledgerdash/internal/models"
)

type CreateTransactionRequest struct {
	ClientID string                 `json:"clientId" validate:"required"`
	BranchID string                 `json:"branchId" validate:"required"`
	Type     models.TransactionType `json:"type" validate:"required,oneof=credit debit"`
	Amount   decimal.Decimal        `json:"amount" validate:"gt=0"`
	UTRID    string                 `json:"utrId" validate:"required,notblank"`
	Remark   string                 `json:"remark,omitempty"`
}

// DeleteTransactionResult is echoed by the backend after it reverses the
// balance effect of a deleted transaction.
type DeleteTransactionResult struct {
	TransactionID string           `json:"transactionId,omitempty"`
	NewBalance    *decimal.Decimal `json:"newBalance,omitempty"`
}

type PreviewRequest struct {
	Amount decimal.Decimal        `json:"amount" validate:"gte=0"`
	Type   models.TransactionType `json:"type" validate:"required,oneof=credit debit"`
}

// TransactionQuery scopes a transaction list fetch.
type TransactionQuery struct {
	BranchID string
	Limit    int
}
