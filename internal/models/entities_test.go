package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefDecodesBareIDAndPopulatedObject(t *testing.T) {
	var branch Branch
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"b1","name":"Main","code":"MN","clientId":"c1"}`), &branch))
	assert.Equal(t, "c1", branch.Client.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"b2","clientId":{"_id":"c2","name":"Acme","phone":"9876543210"}}`), &branch))
	assert.Equal(t, Ref{ID: "c2", Name: "Acme", Phone: "9876543210"}, branch.Client)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"b3","clientId":null}`), &branch))
	assert.Empty(t, branch.Client.ID)
}

func TestTransactionConsistent(t *testing.T) {
	tx := Transaction{
		Type:        Credit,
		Amount:      decimal.NewFromInt(1000),
		Commission:  decimal.NewFromInt(30),
		FinalAmount: decimal.NewFromInt(970),
	}
	assert.True(t, tx.Consistent())

	tx.Type = Debit
	assert.False(t, tx.Consistent())
	tx.FinalAmount = decimal.NewFromInt(1030)
	assert.True(t, tx.Consistent())

	tx.Type = "refund"
	assert.False(t, tx.Consistent())
}

func TestAmountsEncodeAsNumbers(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount decimal.Decimal `json:"amount"`
	}{Amount: decimal.RequireFromString("1500.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1500.5}`, string(out))
}

func TestUserBranchHelpers(t *testing.T) {
	u := User{BranchIDs: []string{"b1", "b2"}}
	assert.True(t, u.HasBranch("b2"))
	assert.False(t, u.HasBranch("b3"))
	assert.False(t, u.HasBranch(""))
	assert.Equal(t, "b1", u.DefaultBranch())
	assert.Equal(t, "", User{}.DefaultBranch())
}

func TestRoleHomePath(t *testing.T) {
	assert.Equal(t, "/staff/dashboard", RoleStaff.HomePath())
	assert.Equal(t, "/login", Role("guest").HomePath())
	assert.False(t, Role("guest").Valid())
}
