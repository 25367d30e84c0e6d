package views

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/ledgerdash/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Rupees formats an amount with two decimals.
func Rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// Preview is the pre-submit commission estimate. The server recomputes the
// real figures.
type Preview struct {
	Commission  decimal.Decimal `json:"commission"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	DisplayText string          `json:"displayText"`
}

// CommissionPreview applies rate (a percentage) to amount: credits receive
// amount minus commission, debits pay amount plus commission. Negative
// amounts are treated as zero.
func CommissionPreview(amount decimal.Decimal, typ models.TransactionType, rate decimal.Decimal) Preview {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	commission := amount.Mul(rate).Div(hundred)

	if typ == models.Credit {
		final := amount.Sub(commission)
		return Preview{
			Commission:  commission,
			FinalAmount: final,
			DisplayText: fmt.Sprintf("You will receive: %s (%s - %s fee)", Rupees(final), Rupees(amount), Rupees(commission)),
		}
	}
	final := amount.Add(commission)
	return Preview{
		Commission:  commission,
		FinalAmount: final,
		DisplayText: fmt.Sprintf("You will pay: %s (%s + %s commission)", Rupees(final), Rupees(amount), Rupees(commission)),
	}
}

// HistoryStats summarises a transaction list.
type HistoryStats struct {
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	AverageAmount   decimal.Decimal `json:"avgTransaction"`
	Count           int             `json:"count"`
}

// Stats totals credits, debits and commission; the average amount is
// rounded down to a whole unit.
func Stats(txs []models.Transaction) HistoryStats {
	st := HistoryStats{Count: len(txs)}
	sum := decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case models.Credit:
			st.TotalCredit = st.TotalCredit.Add(t.Amount)
		case models.Debit:
			st.TotalDebit = st.TotalDebit.Add(t.Amount)
		}
		st.TotalCommission = st.TotalCommission.Add(t.Commission)
		sum = sum.Add(t.Amount)
	}
	if len(txs) > 0 {
		st.AverageAmount = sum.Div(decimal.NewFromInt(int64(len(txs)))).Floor()
	}
	return st
}

// TransactionDraft is the initial state of the new-transaction form.
type TransactionDraft struct {
	BranchID string                 `json:"branchId"`
	ClientID string                 `json:"clientId"`
	Type     models.TransactionType `json:"type"`
	Branches []models.Branch        `json:"branches"`
}

// NewTransactionDraft preselects the first branch and its owning client.
func NewTransactionDraft(branches []models.Branch) TransactionDraft {
	d := TransactionDraft{Type: models.Credit, Branches: branches}
	if len(branches) > 0 {
		d.BranchID = branches[0].ID
		d.ClientID = branches[0].Client.ID
	}
	return d
}
