package views

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/ledgerdash/internal/models"
)

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func TestCommissionPreview(t *testing.T) {
	rate := decimal.NewFromInt(3)

	credit := CommissionPreview(decimal.NewFromInt(1000), models.Credit, rate)
	assert.Equal(t, "30", credit.Commission.String())
	assert.Equal(t, "970", credit.FinalAmount.String())
	assert.Equal(t, "You will receive: ₹970.00 (₹1000.00 - ₹30.00 fee)", credit.DisplayText)

	debit := CommissionPreview(decimal.RequireFromString("250.50"), models.Debit, rate)
	assert.Equal(t, "You will pay: ₹258.02 (₹250.50 + ₹7.52 commission)", debit.DisplayText)
	assert.True(t, debit.FinalAmount.Equal(decimal.RequireFromString("258.015")))

	zero := CommissionPreview(decimal.NewFromInt(-5), models.Credit, rate)
	assert.Equal(t, "You will receive: ₹0.00 (₹0.00 - ₹0.00 fee)", zero.DisplayText)
}

func TestCommissionPreviewMatchesTransactionInvariant(t *testing.T) {
	rate := decimal.RequireFromString("2.5")
	for _, amount := range []string{"1", "99.99", "1000", "123456.78"} {
		for _, typ := range []models.TransactionType{models.Credit, models.Debit} {
			a := decimal.RequireFromString(amount)
			p := CommissionPreview(a, typ, rate)
			tx := models.Transaction{Type: typ, Amount: a, Commission: p.Commission, FinalAmount: p.FinalAmount}
			assert.True(t, tx.Consistent(), "%s %s", typ, amount)
		}
	}
}

func TestFilterClients(t *testing.T) {
	clients := []models.Client{
		{ID: "c1", Name: "Acme Traders", Phone: "9876543210"},
		{ID: "c2", Name: "Blue Ocean", Phone: "9123456780"},
	}
	id := func(c models.Client) string { return c.ID }

	assert.Equal(t, []string{"c1", "c2"}, ids(FilterClients(clients, "  "), id))
	assert.Equal(t, []string{"c1"}, ids(FilterClients(clients, "ACME"), id))
	assert.Equal(t, []string{"c2"}, ids(FilterClients(clients, "91234"), id))
	assert.Empty(t, FilterClients(clients, "zzz"))
}

func TestFilterBranchesAndAssignmentSearch(t *testing.T) {
	branches := []models.Branch{
		{ID: "b1", Name: "North", Code: "NR1", Address: "Market Road", Client: models.Ref{ID: "c1", Name: "Acme"}},
		{ID: "b2", Name: "South", Code: "ST2", Client: models.Ref{ID: "c2", Name: "Blue Ocean"}},
	}
	id := func(b models.Branch) string { return b.ID }

	assert.Equal(t, []string{"b1"}, ids(FilterBranches(branches, "market"), id))
	assert.Equal(t, []string{"b2"}, ids(FilterBranches(branches, "st2"), id))
	assert.Empty(t, FilterBranches(branches, "ocean"))
	assert.Equal(t, []string{"b2"}, ids(SearchAssignableBranches(branches, "ocean"), id))
}

func TestFilterStaff(t *testing.T) {
	staff := []models.StaffMember{
		{ID: "s1", Name: "Ravi", Phone: "9000000001", Branches: []models.Ref{{ID: "b1", Name: "North", Code: "NR1"}}},
		{ID: "s2", Name: "Meena", Phone: "9000000002"},
	}
	id := func(s models.StaffMember) string { return s.ID }

	assert.Equal(t, []string{"s1"}, ids(FilterStaff(staff, "nr1", AllStaff), id))
	assert.Equal(t, []string{"s2"}, ids(FilterStaff(staff, "", UnassignedStaff), id))
	assert.Equal(t, []string{"s1"}, ids(FilterStaff(staff, "", AssignedStaff), id))
	assert.Empty(t, FilterStaff(staff, "meena", AssignedStaff))
}

func TestGroupBranchesByClient(t *testing.T) {
	groups := GroupBranchesByClient([]models.Branch{
		{ID: "b1", Client: models.Ref{ID: "c1"}},
		{ID: "b2", Client: models.Ref{ID: "c2", Name: "Blue"}},
		{ID: "b3", Client: models.Ref{ID: "c1", Name: "Acme"}},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Acme", groups[0].Client.Name)
	assert.Len(t, groups[0].Branches, 2)
	assert.Equal(t, "c2", groups[1].Client.ID)
}

func TestFilterTransactions(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	txs := []models.Transaction{
		{ID: "t1", Type: models.Credit, UTRID: "UTR001", CreatedAt: day(1, 9)},
		{ID: "t2", Type: models.Debit, UTRID: "UTR002", Remark: "rent", CreatedAt: day(2, 23)},
		{ID: "t3", Type: models.Credit, UTRID: "UTR003", CreatedAt: day(3, 0)},
	}
	id := func(t models.Transaction) string { return t.ID }

	assert.Equal(t, []string{"t1", "t3"}, ids(FilterTransactions(txs, TransactionFilter{Type: models.Credit}), id))
	assert.Equal(t, []string{"t1", "t2"}, ids(FilterTransactions(txs, TransactionFilter{To: day(2, 0)}), id))
	assert.Equal(t, []string{"t2", "t3"}, ids(FilterTransactions(txs, TransactionFilter{From: day(2, 15)}), id))
	assert.Equal(t, []string{"t2"}, ids(FilterTransactions(txs, TransactionFilter{Query: "RENT"}), id))
}

func TestStats(t *testing.T) {
	st := Stats([]models.Transaction{
		{Type: models.Credit, Amount: decimal.NewFromInt(1000), Commission: decimal.NewFromInt(30)},
		{Type: models.Debit, Amount: decimal.NewFromInt(501), Commission: decimal.RequireFromString("15.03")},
	})
	assert.Equal(t, "1000", st.TotalCredit.String())
	assert.Equal(t, "501", st.TotalDebit.String())
	assert.Equal(t, "45.03", st.TotalCommission.String())
	assert.Equal(t, "750", st.AverageAmount.String())
	assert.Equal(t, 2, st.Count)

	empty := Stats(nil)
	assert.True(t, empty.AverageAmount.IsZero())
}

func TestNewTransactionDraftSelectsFirstBranch(t *testing.T) {
	draft := NewTransactionDraft([]models.Branch{
		{ID: "b1", Client: models.Ref{ID: "c1"}},
		{ID: "b2", Client: models.Ref{ID: "c2"}},
	})
	assert.Equal(t, "b1", draft.BranchID)
	assert.Equal(t, "c1", draft.ClientID)
	assert.Equal(t, models.Credit, draft.Type)

	assert.Empty(t, NewTransactionDraft(nil).BranchID)
}
