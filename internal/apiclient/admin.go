package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hongminglow/ledgerdash/internal/models"
	"github.com/hongminglow/ledgerdash/internal/models/dto"
)

// Clients lists every client.
func (c *Client) Clients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := c.Do(ctx, http.MethodGet, "/admin/clients", "/admin/clients", nil, &out)
	return out, err
}

// CreateClient registers a client.
func (c *Client) CreateClient(ctx context.Context, req dto.CreateClientRequest) error {
	return c.Do(ctx, http.MethodPost, "/admin/clients", "/admin/clients", req, nil)
}

// DeleteClient removes a client.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/admin/clients/"+url.PathEscape(id), "/admin/clients/:id", nil, nil)
}

// Branches lists every branch with its owning client.
func (c *Client) Branches(ctx context.Context) ([]models.Branch, error) {
	var out []models.Branch
	err := c.Do(ctx, http.MethodGet, "/admin/branches", "/admin/branches", nil, &out)
	return out, err
}

// CreateBranch registers a branch under a client.
func (c *Client) CreateBranch(ctx context.Context, req dto.CreateBranchRequest) error {
	return c.Do(ctx, http.MethodPost, "/admin/branches", "/admin/branches", req, nil)
}

// DeleteBranch removes a branch.
func (c *Client) DeleteBranch(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/admin/branches/"+url.PathEscape(id), "/admin/branches/:id", nil, nil)
}

// BranchStaff lists the staff assigned to one branch.
func (c *Client) BranchStaff(ctx context.Context, branchID string) ([]models.StaffMember, error) {
	var out []models.StaffMember
	err := c.Do(ctx, http.MethodGet, "/admin/branches/"+url.PathEscape(branchID)+"/staff", "/admin/branches/:id/staff", nil, &out)
	return out, err
}

// Staff lists every staff member with their assigned branches.
func (c *Client) Staff(ctx context.Context) ([]models.StaffMember, error) {
	var out []models.StaffMember
	err := c.Do(ctx, http.MethodGet, "/admin/staff", "/admin/staff", nil, &out)
	return out, err
}

// UnassignedStaff lists staff members without any branch.
func (c *Client) UnassignedStaff(ctx context.Context) ([]models.StaffMember, error) {
	var out []models.StaffMember
	err := c.Do(ctx, http.MethodGet, "/admin/staff/unassigned", "/admin/staff/unassigned", nil, &out)
	return out, err
}

// CreateStaff registers a staff member.
func (c *Client) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) error {
	return c.Do(ctx, http.MethodPost, "/admin/staff", "/admin/staff", req, nil)
}

// DeleteStaff removes a staff member.
func (c *Client) DeleteStaff(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/admin/staff/"+url.PathEscape(id), "/admin/staff/:id", nil, nil)
}

// AssignStaffBranches replaces the staff member's whole branch set.
func (c *Client) AssignStaffBranches(ctx context.Context, staffID string, branchIDs []string) error {
	if branchIDs == nil {
		branchIDs = []string{}
	}
	body := dto.AssignBranchesRequest{BranchIDs: branchIDs}
	return c.Do(ctx, http.MethodPost, "/admin/staff/"+url.PathEscape(staffID)+"/assign-branches", "/admin/staff/:id/assign-branches", body, nil)
}

// RemoveStaffFromBranch unassigns one branch from a staff member.
func (c *Client) RemoveStaffFromBranch(ctx context.Context, staffID, branchID string) error {
	endpoint := "/admin/staff/" + url.PathEscape(staffID) + "/remove-branch/" + url.PathEscape(branchID)
	return c.Do(ctx, http.MethodDelete, endpoint, "/admin/staff/:id/remove-branch/:branchId", nil, nil)
}

// Settings fetches the global settings.
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	err := c.Do(ctx, http.MethodGet, "/admin/settings", "/admin/settings", nil, &out)
	return out, err
}

// UpdateSettings saves settings and returns the server's stored copy.
func (c *Client) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	out := s
	err := c.Do(ctx, http.MethodPut, "/admin/settings", "/admin/settings", s, &out)
	return out, err
}
