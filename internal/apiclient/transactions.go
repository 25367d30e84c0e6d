package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
)

// CreateTransaction posts a new transaction and returns the server's record.
func (c *Client) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (models.Transaction, error) {
	var out models.Transaction
	err := c.Do(ctx, http.MethodPost, "/transactions", "/transactions", req, &out)
	return out, err
}

// Transaction fetches a single transaction by id.
func (c *Client) Transaction(ctx context.Context, id string) (models.Transaction, error) {
	var out models.Transaction
	err := c.Do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(id), "/transactions/:id", nil, &out)
	return out, err
}

// DeleteTransaction deletes a transaction; the server reverses its balance
// effect and may echo the new wallet balance.
func (c *Client) DeleteTransaction(ctx context.Context, id string) (dto.DeleteTransactionResult, error) {
	var out dto.DeleteTransactionResult
	err := c.Do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), "/transactions/:id", nil, &out)
	return out, err
}

// Transactions lists the ledger visible to role. Both paginated ({docs: [...]})
// and bare-array payloads are accepted.
func (c *Client) Transactions(ctx context.Context, role models.Role, q dto.TransactionQuery) ([]models.Transaction, error) {
	base, err := rolePrefix(role)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	if q.BranchID != "" && role != models.RoleClient {
		params.Set("branchId", q.BranchID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	route := base + "/transactions"
	endpoint := route
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, endpoint, route, nil, &raw); err != nil {
		return nil, err
	}
	var out []models.Transaction
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(unwrapDocs(raw), &out); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return out, nil
}

// StaffBranches lists the branches assigned to the logged-in staff member,
// with their owning client populated.
func (c *Client) StaffBranches(ctx context.Context) ([]models.Branch, error) {
	var out []models.Branch
	err := c.Do(ctx, http.MethodGet, "/staff/branches", "/staff/branches", nil, &out)
	return out, err
}

// Dashboard fetches the summary for role. branchID narrows admin and staff
// summaries and is ignored for clients.
func (c *Client) Dashboard(ctx context.Context, role models.Role, branchID string) (models.DashboardSummary, error) {
	base, err := rolePrefix(role)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	route := base + "/dashboard"
	endpoint := route
	if branchID != "" && role != models.RoleClient {
		endpoint += "?" + url.Values{"branchId": {branchID}}.Encode()
	}
	var out models.DashboardSummary
	err = c.Do(ctx, http.MethodGet, endpoint, route, nil, &out)
	return out, err
}

func rolePrefix(role models.Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	return "/" + string(role), nil
}
